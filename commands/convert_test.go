package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiblo/poimap/internal/core/model"
)

const sampleCSV = `x,y,_flag_expired,name_poi,address_poi,title_source,blog_source,link_source,date_text,date_stamp,url_flag,url_link,_latlng
140.1,35.6,0,駅前カフェ,千葉市中央区1-2-3,朝食に行った,chiblog,https://example.com/1,2026年8月,1756000000,ig,https://instagram.com/x,"35.6,140.1"
140.2,35.7,1,閉店した店,,,,,,,,,
140.3,35.8,0,海浜公園,,,,https://example.com/2,,not-a-date,,,
,35.9,0,座標なし,,,,,,,,,
200.0,35.9,0,座標異常,,,,,,,,,
`

func TestReadCSVFeatures(t *testing.T) {
	features, dropped, err := readCSVFeatures(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Expired, coordinate-less and out-of-range rows are dropped.
	assert.Equal(t, 3, dropped)
	require.Len(t, features, 2)

	first := features[0]
	assert.Equal(t, int64(1), first.FID)
	assert.Equal(t, 140.1, first.Lon)
	assert.Equal(t, 35.6, first.Lat)
	assert.Equal(t, "駅前カフェ", first.Name)
	assert.Equal(t, "千葉市中央区1-2-3", first.Address)
	assert.Equal(t, int64(1756000000), first.DateStamp)
	assert.Equal(t, model.URLFlagInstagram, first.URLFlag)

	// Fids are sequential over survivors, not source rows.
	second := features[1]
	assert.Equal(t, int64(2), second.FID)
	assert.Equal(t, "海浜公園", second.Name)
	// Unparsable date stamp falls back to zero.
	assert.Zero(t, second.DateStamp)
}

func TestReadCSVFeaturesMissingColumns(t *testing.T) {
	_, _, err := readCSVFeatures(strings.NewReader("name_poi,date_text\nカフェ,2026年8月\n"))
	assert.Error(t, err)
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		x, y string
		ok   bool
	}{
		{"140.1", "35.6", true},
		{"-180", "-90", true},
		{"180", "90", true},
		{"180.1", "35.6", false},
		{"140.1", "90.1", false},
		{"", "35.6", false},
		{"east", "35.6", false},
	}
	for _, tt := range tests {
		_, _, ok := parseCoordinates(tt.x, tt.y)
		assert.Equal(t, tt.ok, ok, "x=%q y=%q", tt.x, tt.y)
	}
}

func TestParseCenter(t *testing.T) {
	lon, lat, err := parseCenter("140.12, 35.60")
	require.NoError(t, err)
	assert.Equal(t, 140.12, lon)
	assert.Equal(t, 35.60, lat)

	for _, raw := range []string{"", "140.12", "140.12,35.60,14", "a,b"} {
		_, _, err := parseCenter(raw)
		assert.Error(t, err, raw)
	}
}

func TestToCategoryIDs(t *testing.T) {
	ids := toCategoryIDs([]string{" cafe ", "", "ramen"})
	require.Len(t, ids, 2)
	assert.EqualValues(t, "cafe", ids[0])
	assert.EqualValues(t, "ramen", ids[1])
}

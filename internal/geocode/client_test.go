package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "千葉駅", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"lon":"140.1124","lat":"35.6131","display_name":"千葉駅, 千葉市, 日本"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Search(context.Background(), "千葉駅")
	require.NoError(t, err)
	assert.InDelta(t, 140.1124, result.Lon, 1e-9)
	assert.InDelta(t, 35.6131, result.Lat, 1e-9)
	assert.Equal(t, "千葉駅, 千葉市, 日本", result.DisplayName)
}

func TestSearchNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "どこでもない場所")
	assert.Error(t, err)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
		{
			name: "unparsable coordinates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"lon":"east","lat":"north","display_name":"x"}]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL).Search(context.Background(), "千葉駅")
			assert.Error(t, err)
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	_, err := NewClient("").Search(context.Background(), "")
	assert.Error(t, err)
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewClient("").Endpoint)
	assert.Equal(t, "http://example.com", NewClient("http://example.com").Endpoint)
}

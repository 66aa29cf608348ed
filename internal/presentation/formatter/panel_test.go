package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/query"
)

func TestRenderRowsAndFooter(t *testing.T) {
	result := query.ListResult{
		Items: []model.Feature{
			{FID: 1, Name: "駅前カフェ", TitleSource: "朝食に行った", DateText: "2026年8月"},
			{FID: 2, Name: "海浜公園", DateStamp: 1756000000},
		},
		Total: 2,
	}

	var buf bytes.Buffer
	NewPanelWidth(80).Render(&buf, result)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "駅前カフェ")
	assert.Contains(t, lines[0], "2026年8月")
	// DateText wins over the stamp; with no text the stamp is formatted.
	assert.Contains(t, lines[1], "2025-08-2")
	assert.Equal(t, "2 results", lines[2])
}

func TestRenderTruncationFooter(t *testing.T) {
	items := make([]model.Feature, 50)
	for i := range items {
		items[i] = model.Feature{FID: int64(i + 1), Name: "店舗"}
	}
	result := query.ListResult{Items: items, Total: 1234, Truncated: true}

	var buf bytes.Buffer
	NewPanelWidth(80).Render(&buf, result)

	// The footer reports the true count, not the display cap.
	assert.Contains(t, buf.String(), "1.2K results (showing first 50)")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPanelWidth(80).Render(&buf, query.ListResult{})
	assert.Equal(t, "0 results\n", buf.String())
}

func TestRenderPopup(t *testing.T) {
	popup := query.NewPopupState([]model.Feature{
		{FID: 1, Name: "駅前カフェ", Address: "千葉市中央区1-2-3", LinkSource: "https://example.com/1", URLFlag: model.URLFlagInstagram, URLLink: "https://instagram.com/x"},
		{FID: 2, Name: "海浜公園"},
	})

	var buf bytes.Buffer
	panel := NewPanelWidth(80)
	panel.RenderPopup(&buf, popup)
	out := buf.String()

	assert.Contains(t, out, "[1/2] 駅前カフェ")
	assert.Contains(t, out, "千葉市中央区1-2-3")
	assert.Contains(t, out, "[ig] https://instagram.com/x")

	popup.Next()
	buf.Reset()
	panel.RenderPopup(&buf, popup)
	assert.Contains(t, buf.String(), "[2/2] 海浜公園")
}

func TestRenderPopupEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPanelWidth(80).RenderPopup(&buf, query.NewPopupState(nil))
	assert.Empty(t, buf.String())
}

func TestPanelWidthFloor(t *testing.T) {
	// Width below the minimum would make the columns collapse.
	var buf bytes.Buffer
	NewPanelWidth(10).Render(&buf, query.ListResult{
		Items: []model.Feature{{FID: 1, Name: "店舗"}},
		Total: 1,
	})
	assert.Contains(t, buf.String(), "店舗")
}

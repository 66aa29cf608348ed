// Package formatter renders the side-panel list to a terminal. This is the
// CLI stand-in for the site's result panel; column layout uses display
// widths because most names are CJK.
package formatter

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/chiblo/poimap/internal/query"
	"github.com/chiblo/poimap/internal/util"
)

const (
	minPanelWidth     = 60
	defaultPanelWidth = 100
)

// Panel formats viewport list results.
type Panel struct {
	width int
}

// NewPanel creates a panel sized to the terminal, falling back to a fixed
// width when stdout is not a terminal.
func NewPanel() *Panel {
	width := defaultPanelWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	if width < minPanelWidth {
		width = minPanelWidth
	}
	return &Panel{width: width}
}

// NewPanelWidth creates a panel with an explicit width. Test hook.
func NewPanelWidth(width int) *Panel {
	if width < minPanelWidth {
		width = minPanelWidth
	}
	return &Panel{width: width}
}

// Render writes the list rows plus a true-count footer. The footer always
// reports the full viewport subset size even when the display cap truncated
// the rows.
func (p *Panel) Render(w io.Writer, result query.ListResult) {
	nameWidth := (p.width - 14) / 2
	titleWidth := p.width - 14 - nameWidth

	for i, f := range result.Items {
		name := util.TruncateWidth(f.Name, nameWidth)
		title := util.TruncateWidth(f.TitleSource, titleWidth)
		date := f.DateText
		if date == "" && f.DateStamp > 0 {
			date = time.Unix(f.DateStamp, 0).Format("2006-01-02")
		}
		fmt.Fprintf(w, "%3d  %s  %s  %s\n", i+1, util.PadRight(name, nameWidth), util.PadRight(title, titleWidth), date)
	}

	if result.Truncated {
		fmt.Fprintf(w, "%s results (showing first %d)\n", util.FormatCount(result.Total), len(result.Items))
	} else {
		fmt.Fprintf(w, "%s results\n", util.FormatCount(result.Total))
	}
}

// RenderPopup writes the detail block for the popup carousel selection.
func (p *Panel) RenderPopup(w io.Writer, popup *query.PopupState) {
	f, ok := popup.Current()
	if !ok {
		return
	}
	fmt.Fprintf(w, "\n[%d/%d] %s\n", popup.Index()+1, popup.Len(), f.Name)
	if f.Address != "" {
		fmt.Fprintf(w, "     %s\n", f.Address)
	}
	if f.TitleSource != "" {
		fmt.Fprintf(w, "     %s\n", f.TitleSource)
	}
	if f.LinkSource != "" {
		fmt.Fprintf(w, "     %s\n", f.LinkSource)
	}
	if f.URLFlag != "" && f.URLLink != "" {
		fmt.Fprintf(w, "     [%s] %s\n", f.URLFlag, f.URLLink)
	}
}

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/chiblo/poimap/internal/config"
	"github.com/chiblo/poimap/internal/core/session"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/data/fetcher"
	"github.com/chiblo/poimap/internal/filter"
	"github.com/chiblo/poimap/internal/geo"
	"github.com/chiblo/poimap/internal/presentation/formatter"
	"github.com/chiblo/poimap/internal/query"
	"github.com/chiblo/poimap/internal/render"
	"github.com/chiblo/poimap/internal/util"
)

var (
	// Data source
	sourceURL  string
	sourceFile string

	// Load tuning
	flushEvery int

	// Filter criteria
	keyword    string
	periodDays int
	categories []string
	tableFile  string

	// Viewport
	center string
	zoom   float64
	boxPx  float64

	// Output
	listCap      int
	selectIndex  int
	outputFormat string

	// Logging
	debug   bool
	logFile string

	rootCmd = &cobra.Command{
		Use:   "poimap [flags]",
		Short: "Progressive POI stream loader and filter engine",
		Long: `poimap loads a binary POI feature stream, filters it by keyword,
time period and category, and prints the features around a map center.

Examples:
  poimap --file chiblo_poi.poi                          # Load and count a local dataset
  poimap --url https://example.com/poi --keyword cafe    # Keyword filter
  poimap --file data.poi --period-days 30 --category cafe
  poimap --file data.poi --center 140.12,35.60 --zoom 14 # Viewport list panel
  poimap --file data.poi --output json                  # Panel as JSON`,
		RunE: runLoad,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceURL, "url", "",
		"HTTP endpoint of the binary feature collection")
	rootCmd.PersistentFlags().StringVar(&sourceFile, "file", "",
		"Local dataset file (alternative to --url)")
	rootCmd.PersistentFlags().IntVar(&flushEvery, "flush-every", session.DefaultFlushEvery,
		"Render flush cadence in decoded features")
	rootCmd.PersistentFlags().StringVar(&tableFile, "categories-file", "",
		"YAML category table (built-in table when omitted)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Also write logs to this file (JSON lines)")

	rootCmd.Flags().StringVarP(&keyword, "keyword", "k", "",
		"Free-text keyword filter")
	rootCmd.Flags().IntVar(&periodDays, "period-days", 0,
		"Only features dated within the last N days (0 = all time)")
	rootCmd.Flags().StringSliceVarP(&categories, "category", "c", nil,
		"Category chip ids (repeatable)")
	rootCmd.Flags().StringVar(&center, "center", "",
		"Map center as lon,lat for the viewport list")
	rootCmd.Flags().Float64Var(&zoom, "zoom", 14,
		"Map zoom for viewport projection")
	rootCmd.Flags().Float64Var(&boxPx, "box", geo.DefaultBoxPx,
		"Viewport half-box in screen pixels")
	rootCmd.Flags().IntVar(&listCap, "limit", query.DefaultCap,
		"Display cap of the result list")
	rootCmd.Flags().IntVar(&selectIndex, "select", -1,
		"Show popup detail for the given list row (0-based)")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "panel",
		"Output format (panel, json)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func initLogging() {
	level := "info"
	if debug {
		level = "debug"
	}
	util.InitLogger(level, logFile)
}

func runLoad(cmd *cobra.Command, args []string) error {
	initLogging()

	table, err := config.LoadTable(tableFile)
	if err != nil {
		return err
	}

	holder := store.NewHolder()
	layers := render.DefaultLayers()
	syncer := newSyncer(holder, layers)
	engine := filter.NewEngine(holder, table)
	controller := session.NewController(holder, syncer, engine, flushEvery)

	src, err := resolveSource()
	if err != nil {
		return err
	}

	s := controller.Start(context.Background(), src)
	<-s.Done()
	if s.State() == session.StateFailed && holder.Current().Len() == 0 {
		// Nothing decoded at all, so there is nothing to degrade to.
		return fmt.Errorf("load failed: %w", s.Err())
	}
	if err := s.Err(); err != nil {
		util.LogWarnf("continuing with %d features loaded before failure", holder.Current().Len())
	}

	engine.SetState(filter.State{
		Keyword:    keyword,
		PeriodDays: periodDays,
		Categories: toCategoryIDs(categories),
	})
	syncer.ApplyFilter(engine.Expression())

	if center == "" {
		// No viewport: report the full match set size.
		fmt.Fprintf(cmd.OutOrStdout(), "%d features loaded, %d match\n",
			holder.Current().Len(), len(engine.Matches()))
		return nil
	}

	centerLon, centerLat, err := parseCenter(center)
	if err != nil {
		return err
	}
	engine.SetViewport(geo.NewViewportQuery(centerLon, centerLat, zoom, boxPx))

	projection := query.NewListProjection(listCap)
	result := projection.Build(engine.ViewportFeatures())

	if outputFormat == "json" {
		data, err := sonic.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	panel := formatter.NewPanel()
	panel.Render(cmd.OutOrStdout(), result)
	if selectIndex >= 0 {
		popup := query.NewPopupState(result.Items)
		if popup.Select(selectIndex) {
			panel.RenderPopup(cmd.OutOrStdout(), popup)
		}
	}
	return nil
}

func newSyncer(holder *store.Holder, layers []*render.MemoryLayer) *render.Syncer {
	all := make([]render.Layer, len(layers))
	for i, l := range layers {
		all[i] = l
	}
	return render.NewSyncer(holder, all...)
}

func resolveSource() (session.Source, error) {
	switch {
	case sourceURL != "" && sourceFile != "":
		return nil, fmt.Errorf("--url and --file are mutually exclusive")
	case sourceURL != "":
		return fetcher.NewHTTPSource(sourceURL), nil
	case sourceFile != "":
		return fetcher.NewFileSource(sourceFile), nil
	default:
		return nil, fmt.Errorf("one of --url or --file is required")
	}
}

func toCategoryIDs(ids []string) []filter.CategoryID {
	out := make([]filter.CategoryID, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, filter.CategoryID(id))
		}
	}
	return out
}

func parseCenter(raw string) (lon, lat float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--center must be lon,lat")
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--center longitude: %w", err)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("--center latitude: %w", err)
	}
	return lon, lat, nil
}

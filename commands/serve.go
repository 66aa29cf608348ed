package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiblo/poimap/internal/api"
	"github.com/chiblo/poimap/internal/config"
	"github.com/chiblo/poimap/internal/core/session"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/data/fetcher"
	"github.com/chiblo/poimap/internal/filter"
	"github.com/chiblo/poimap/internal/geocode"
	"github.com/chiblo/poimap/internal/query"
	"github.com/chiblo/poimap/internal/render"
	"github.com/chiblo/poimap/internal/util"
)

var (
	listenAddr      string
	watch           bool
	geocodeEndpoint string

	serveCmd = &cobra.Command{
		Use:   "serve [flags]",
		Short: "Serve the map API over HTTP",
		Long: `serve loads the dataset and exposes the filter engine and viewport list
over an HTTP API for the map frontend.

Examples:
  poimap serve --file chiblo_poi.poi --listen :8080
  poimap serve --file chiblo_poi.poi --watch        # Reload on file change
  poimap serve --url https://example.com/poi`,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080",
		"Address to serve the API on")
	serveCmd.Flags().BoolVar(&watch, "watch", false,
		"Reload when a file-backed dataset changes (requires --file)")
	serveCmd.Flags().StringVar(&geocodeEndpoint, "geocode-endpoint", "",
		"Geocoding service endpoint (Nominatim-compatible)")
	serveCmd.Flags().IntVar(&listCap, "limit", query.DefaultCap,
		"Display cap of the /api/list response")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	initLogging()

	table, err := config.LoadTable(tableFile)
	if err != nil {
		return err
	}

	src, err := resolveSource()
	if err != nil {
		return err
	}
	if watch && sourceFile == "" {
		return fmt.Errorf("--watch requires --file")
	}

	holder := store.NewHolder()
	layers := render.DefaultLayers()
	syncer := newSyncer(holder, layers)
	engine := filter.NewEngine(holder, table)
	controller := session.NewController(holder, syncer, engine, flushEvery)
	projection := query.NewListProjection(listCap)
	geocoder := geocode.NewClient(geocodeEndpoint)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	controller.Start(ctx, src)

	if watch {
		watcher, err := fetcher.NewWatcher(sourceFile, func() {
			controller.Start(ctx, src)
		})
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
	}

	handler := api.NewHandler(holder, engine, syncer, controller, projection, table, geocoder)
	server := api.NewServer(handler)

	util.LogInfof("serve: listening on %s (source %s)", listenAddr, src)
	return server.Run(listenAddr)
}

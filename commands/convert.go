package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/data/codec"
	"github.com/chiblo/poimap/internal/util"
)

var (
	convertIn  string
	convertOut string

	convertCmd = &cobra.Command{
		Use:   "convert --csv data.csv --out data.poi",
		Short: "Convert a POI export CSV into the binary stream format",
		Long: `convert reads the spreadsheet export the dataset is maintained in and
writes the binary stream the map loads.

Rows flagged expired (_flag_expired != "0") and rows without valid x/y
coordinates are dropped. Surviving rows get sequential fids starting at 1.

Example:
  poimap convert --csv chiblo_poi.csv --out chiblo_poi.poi`,
		RunE: runConvert,
	}
)

func init() {
	convertCmd.Flags().StringVar(&convertIn, "csv", "", "Input CSV export")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Output stream file")
	convertCmd.MarkFlagRequired("csv")
	convertCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	initLogging()

	in, err := os.Open(convertIn)
	if err != nil {
		return err
	}
	defer in.Close()

	features, dropped, err := readCSVFeatures(in)
	if err != nil {
		return err
	}

	out, err := os.Create(convertOut)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := codec.NewEncoder(out, len(features))
	if err != nil {
		return err
	}
	for _, f := range features {
		if err := enc.Write(f); err != nil {
			return err
		}
	}
	if err := out.Sync(); err != nil {
		return err
	}

	util.LogInfof("convert: wrote %d features to %s (%d rows dropped)", len(features), convertOut, dropped)
	fmt.Fprintf(cmd.OutOrStdout(), "%d features written, %d rows dropped\n", len(features), dropped)
	return nil
}

// readCSVFeatures parses the export. Expired and coordinate-less rows are
// dropped, not errors; the export always carries some half-filled rows.
func readCSVFeatures(r io.Reader) ([]model.Feature, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("convert: reading header row: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"x", "y"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("convert: missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var features []model.Feature
	dropped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("convert: reading row: %w", err)
		}

		if field(row, "_flag_expired") != "0" {
			dropped++
			continue
		}
		lon, lat, ok := parseCoordinates(field(row, "x"), field(row, "y"))
		if !ok {
			dropped++
			continue
		}

		f := model.Feature{
			FID:           int64(len(features) + 1),
			Lon:           lon,
			Lat:           lat,
			Name:          field(row, "name_poi"),
			Address:       field(row, "address_poi"),
			TitleSource:   field(row, "title_source"),
			BlogSource:    field(row, "blog_source"),
			LinkSource:    field(row, "link_source"),
			DateText:      field(row, "date_text"),
			CategoryFlags: field(row, "category_flags"),
			URLFlag:       model.ParseURLFlag(field(row, "url_flag")),
			URLLink:       field(row, "url_link"),
		}
		if raw := field(row, "date_stamp"); raw != "" {
			if stamp, err := strconv.ParseInt(raw, 10, 64); err == nil {
				f.DateStamp = stamp
			}
			// Unparsable stamps stay 0, which sorts as oldest.
		}
		features = append(features, f)
	}
	return features, dropped, nil
}

// parseCoordinates validates the x/y columns against the WGS84 ranges.
func parseCoordinates(x, y string) (lon, lat float64, ok bool) {
	if x == "" || y == "" {
		return 0, 0, false
	}
	lon, errLon := strconv.ParseFloat(x, 64)
	lat, errLat := strconv.ParseFloat(y, 64)
	if errLon != nil || errLat != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lon, lat, true
}

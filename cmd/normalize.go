package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/district-lens/internal/district"
	"github.com/sells-group/district-lens/internal/render"
)

var normalizeGeoJSON bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Load and normalize the shapefile once and print the result",
	Long: `Runs the full load: state filter, Alaska largest-polygon repair,
reprojection and land ratio. Prints a summary, or with --geojson the
choropleth FeatureCollection, to stdout. Nothing is written to disk.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("normalize"); err != nil {
			return err
		}
		opts, err := districtOptions(cfg)
		if err != nil {
			return err
		}

		table, err := district.NewLoader(opts).Load(cfg.ShapefilePath())
		if err != nil {
			userMessage(cmd.ErrOrStderr(), err)
			return err
		}

		if normalizeGeoJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(render.FeatureCollection(table)); err != nil {
				return eris.Wrap(err, "normalize: encode geojson")
			}
			return nil
		}
		return printSummary(cmd.OutOrStdout(), table)
	},
}

func printSummary(w io.Writer, t *district.Table) error {
	s, err := render.Summary(t)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Districts:        %d\n", t.Len())
	fmt.Fprintf(w, "Alaska records:   %d\n", t.StateCount("02"))
	fmt.Fprintf(w, "CRS:              %s\n", t.CRS())
	fmt.Fprintf(w, "Land ratio mean:  %.4f\n", s.Mean)
	fmt.Fprintf(w, "Land ratio median: %.4f\n", s.Median)
	fmt.Fprintf(w, "Land ratio range: %.4f - %.4f\n", s.Min, s.Max)
	fmt.Fprintf(w, "Land ratio std:   %.4f\n", s.StdDev)
	return nil
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeGeoJSON, "geojson", false, "print the GeoJSON FeatureCollection instead of a summary")
	rootCmd.AddCommand(normalizeCmd)
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/district-lens/internal/config"
	"github.com/sells-group/district-lens/internal/crs"
	"github.com/sells-group/district-lens/internal/district"
)

// districtOptions maps shapefile settings onto normalization options.
func districtOptions(c *config.Config) (district.Options, error) {
	def, err := crs.FromEPSG(c.Shapefile.DefaultEPSG)
	if err != nil {
		return district.Options{}, eris.Wrap(err, "shapefile.default_epsg")
	}
	opts := district.DefaultOptions()
	opts.SkipReproject = !c.Shapefile.Reproject
	opts.CollapseAll = c.Shapefile.CollapseAll
	opts.DefaultCRS = def
	return opts, nil
}

// userMessage prints the user-facing text of a load failure to w.
func userMessage(w io.Writer, err error) {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		fmt.Fprintln(w, m.Message())
	}
}

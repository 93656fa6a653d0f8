// Package crs identifies the coordinate reference system of a shapefile and
// moves go-geom coordinates between reference systems using PROJ.
package crs

import (
	"fmt"
	"strings"

	"github.com/pebbe/proj/v5"
	"github.com/rotisserie/eris"
)

// ErrUnsupported is returned for reference systems PROJ cannot build.
var ErrUnsupported = eris.New("crs: unsupported coordinate reference system")

// Well-known EPSG codes.
const (
	EPSGWGS84       = 4326
	EPSGNAD83       = 4269
	EPSGETRS89      = 4258
	EPSGWebMercator = 3857
	EPSGConusAlbers = 5070
)

// Geographic systems are defined by PROJ strings rather than "EPSG:n" so that
// coordinates stay in shapefile lon/lat order instead of the authority's
// lat/lon axis order.
var geographic = map[int]CRS{
	EPSGWGS84:  {EPSG: EPSGWGS84, Name: "WGS 84", Definition: "+proj=longlat +datum=WGS84 +no_defs"},
	EPSGNAD83:  {EPSG: EPSGNAD83, Name: "NAD83", Definition: "+proj=longlat +datum=NAD83 +no_defs"},
	EPSGETRS89: {EPSG: EPSGETRS89, Name: "ETRS89", Definition: "+proj=longlat +ellps=GRS80 +no_defs"},
}

// CRS is a coordinate reference system.
type CRS struct {
	// EPSG is zero when the system came from a .prj without a known code.
	EPSG int
	Name string
	// Definition is anything PROJ accepts: WKT, a PROJ string or "EPSG:n".
	Definition string
}

// WGS84 is the geographic lon/lat system downstream rendering expects.
var WGS84 = geographic[EPSGWGS84]

// NAD83 is the geographic system TIGER/Line shapefiles are published in.
var NAD83 = geographic[EPSGNAD83]

// FromEPSG returns the CRS for an EPSG code known to the PROJ database.
func FromEPSG(code int) (CRS, error) {
	if c, ok := geographic[code]; ok {
		return c, nil
	}
	def := fmt.Sprintf("EPSG:%d", code)
	name, err := describe(def)
	if err != nil {
		return CRS{}, eris.Wrapf(err, "crs: EPSG:%d", code)
	}
	return CRS{EPSG: code, Name: name, Definition: def}, nil
}

// Parse builds a CRS from the WKT of a .prj sidecar. ESRI and OGC WKT1 as
// well as WKT2 are accepted, as far as the linked PROJ understands them.
func Parse(wkt string) (CRS, error) {
	wkt = strings.TrimSpace(strings.TrimPrefix(wkt, "\ufeff"))
	if wkt == "" {
		return CRS{}, eris.Wrap(ErrUnsupported, "crs: empty definition")
	}
	name, err := describe(wkt)
	if err != nil {
		return CRS{}, err
	}
	return CRS{Name: name, Definition: wkt}, nil
}

// describe asks PROJ to build def and returns the name it reports.
func describe(def string) (string, error) {
	ctx := proj.NewContext()
	defer ctx.Close()

	pj, err := ctx.Create(def)
	if err != nil {
		return "", eris.Wrapf(ErrUnsupported, "crs: %v", err)
	}
	defer pj.Close()
	if !pj.IsValid() {
		return "", eris.Wrap(ErrUnsupported, "crs: invalid definition")
	}
	return pj.Info().Description, nil
}

// String renders the CRS the way logs and API responses show it.
func (c CRS) String() string {
	if c.EPSG != 0 {
		return fmt.Sprintf("EPSG:%d", c.EPSG)
	}
	if c.Name != "" {
		return c.Name
	}
	return "unknown"
}

// Equivalent reports whether c and o name the same system, in which case
// coordinates pass between them unchanged.
func (c CRS) Equivalent(o CRS) bool {
	if c.EPSG != 0 && c.EPSG == o.EPSG {
		return true
	}
	return c.Definition != "" && c.Definition == o.Definition
}

// Package tigertest writes small congressional district shapefiles for tests.
package tigertest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

// District is one record to write. Rings lists the polygon parts; shells must
// be clockwise and holes counter-clockwise, as shapefiles require.
type District struct {
	StateFP string
	GEOID   string
	ALand   string
	AWater  string
	Name    string
	Rings   [][]shp.Point
}

// Square returns a clockwise closed ring with the given lower-left corner and side.
func Square(x, y, side float64) []shp.Point {
	return []shp.Point{
		{X: x, Y: y},
		{X: x, Y: y + side},
		{X: x + side, Y: y + side},
		{X: x + side, Y: y},
		{X: x, Y: y},
	}
}

// Reverse returns ring with its winding flipped.
func Reverse(ring []shp.Point) []shp.Point {
	out := make([]shp.Point, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// Fields is the DBF layout of the TIGER/Line CD product used by WriteDistricts.
var Fields = []shp.Field{
	shp.StringField("STATEFP", 2),
	shp.StringField("GEOID", 4),
	shp.StringField("NAMELSAD", 40),
	shp.NumberField("ALAND", 14),
	shp.NumberField("AWATER", 14),
}

// WriteDistricts writes a polygon shapefile named name into dir and returns
// its .shp path. When prj is non-empty a .prj sidecar is written too.
func WriteDistricts(t *testing.T, dir, name, prj string, districts []District) string {
	t.Helper()

	shpPath := filepath.Join(dir, name)
	w, err := shp.Create(shpPath, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields(Fields)
	for i, d := range districts {
		poly := (*shp.Polygon)(shp.NewPolyLine(d.Rings))
		w.Write(poly)
		require.NoError(t, w.WriteAttribute(i, 0, d.StateFP))
		require.NoError(t, w.WriteAttribute(i, 1, d.GEOID))
		require.NoError(t, w.WriteAttribute(i, 2, d.Name))
		require.NoError(t, w.WriteAttribute(i, 3, d.ALand))
		require.NoError(t, w.WriteAttribute(i, 4, d.AWater))
	}
	w.Close()

	if prj != "" {
		base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
		require.NoError(t, os.WriteFile(base+".prj", []byte(prj), 0o644))
	}
	return shpPath
}

package tiger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/district-lens/internal/tiger/tigertest"
)

func TestReadShapefile(t *testing.T) {
	dir := t.TempDir()
	path := tigertest.WriteDistricts(t, dir, "cd.shp", `GEOGCS["GCS_North_American_1983",DATUM["D_North_American_1983",SPHEROID["GRS_1980",6378137,298.257222101]]]`,
		[]tigertest.District{
			{StateFP: "01", GEOID: "0101", Name: "Congressional District 1", ALand: "300", AWater: "100",
				Rings: [][]shp.Point{tigertest.Square(-88, 30, 1)}},
			{StateFP: "02", GEOID: "0200", Name: "Congressional District (at Large)", ALand: "500", AWater: "0",
				Rings: [][]shp.Point{tigertest.Square(-150, 60, 3), tigertest.Square(-160, 55, 1)}},
		})

	ds, err := ReadShapefile(path)
	require.NoError(t, err)

	assert.Equal(t, path, ds.Path)
	assert.True(t, ds.HasField("statefp"))
	assert.True(t, ds.HasField("ALAND"))
	assert.False(t, ds.HasField("CD119FP"))
	assert.Contains(t, ds.PRJ, "North_American_1983")

	require.Len(t, ds.Features, 2)

	first := ds.Features[0]
	assert.Equal(t, "01", first.Attributes["STATEFP"])
	assert.Equal(t, "0101", first.Attributes["GEOID"])
	assert.Equal(t, "Congressional District 1", first.Attributes["NAMELSAD"])
	assert.Equal(t, "300", first.Attributes["ALAND"])
	assert.IsType(t, &geom.Polygon{}, first.Geometry)

	second := ds.Features[1]
	mp, ok := second.Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestReadShapefile_NoPRJ(t *testing.T) {
	dir := t.TempDir()
	path := tigertest.WriteDistricts(t, dir, "cd.shp", "", []tigertest.District{
		{StateFP: "06", GEOID: "0612", ALand: "1", AWater: "1", Rings: [][]shp.Point{tigertest.Square(0, 0, 1)}},
	})

	ds, err := ReadShapefile(path)
	require.NoError(t, err)
	assert.Empty(t, ds.PRJ)
}

func TestReadShapefile_Missing(t *testing.T) {
	_, err := ReadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}

func TestReadShapefile_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.shp")
	require.NoError(t, os.WriteFile(path, []byte("not a shapefile"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.dbf"), []byte("junk"), 0o644))

	_, err := ReadShapefile(path)
	assert.Error(t, err)
}

func TestReadPRJ_UpperCaseSidecar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cd.PRJ"), []byte("  GEOGCS[\"x\"]\n"), 0o644))

	prj, err := ReadPRJ(filepath.Join(dir, "cd.shp"))
	require.NoError(t, err)
	assert.Equal(t, `GEOGCS["x"]`, prj)
}

package tiger

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/district-lens/internal/tiger/tigertest"
)

func polygonShape(rings ...[]shp.Point) *shp.Polygon {
	return (*shp.Polygon)(shp.NewPolyLine(rings))
}

func TestShapeToGeom_Point(t *testing.T) {
	g := ShapeToGeom(&shp.Point{X: -80.19, Y: 25.77})
	p, ok := g.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{-80.19, 25.77}, p.FlatCoords())
}

func TestShapeToGeom_SingleRing(t *testing.T) {
	g := ShapeToGeom(polygonShape(tigertest.Square(-80, 25, 1)))

	p, ok := g.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 1, p.NumLinearRings())
	assert.InDelta(t, 1.0, p.Area(), 1e-9)
}

func TestShapeToGeom_ShellWithHole(t *testing.T) {
	shell := tigertest.Square(0, 0, 10)
	hole := tigertest.Reverse(tigertest.Square(2, 2, 2))

	g := ShapeToGeom(polygonShape(shell, hole))

	p, ok := g.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 2, p.NumLinearRings())
	assert.InDelta(t, 96.0, p.Area(), 1e-9)
}

func TestShapeToGeom_MultiPart(t *testing.T) {
	g := ShapeToGeom(polygonShape(
		tigertest.Square(0, 0, 1),
		tigertest.Square(5, 5, 2),
		tigertest.Reverse(tigertest.Square(5.5, 5.5, 0.5)),
	))

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 2, mp.NumPolygons())
	assert.InDelta(t, 1.0, mp.Polygon(0).Area(), 1e-9)
	// The hole lands in the shell that contains it.
	assert.Equal(t, 2, mp.Polygon(1).NumLinearRings())
	assert.InDelta(t, 3.75, mp.Polygon(1).Area(), 1e-9)
}

func TestShapeToGeom_CounterClockwiseOnly(t *testing.T) {
	g := ShapeToGeom(polygonShape(
		tigertest.Reverse(tigertest.Square(0, 0, 1)),
		tigertest.Reverse(tigertest.Square(3, 3, 1)),
	))
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestShapeToGeom_NoParts(t *testing.T) {
	g := ShapeToGeom(&shp.Polygon{})
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 0, mp.NumPolygons())
}

func TestShapeToGeom_DegenerateRingSkipped(t *testing.T) {
	g := ShapeToGeom(polygonShape(
		[]shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
		tigertest.Square(0, 0, 1),
	))
	_, ok := g.(*geom.Polygon)
	assert.True(t, ok)
}

func TestShapeToGeom_PolyLine(t *testing.T) {
	pl := shp.NewPolyLine([][]shp.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}})
	g := ShapeToGeom(pl)
	mls, ok := g.(*geom.MultiLineString)
	require.True(t, ok)
	assert.Equal(t, 1, mls.NumLineStrings())
}

func TestShapeToGeom_Nil(t *testing.T) {
	assert.Nil(t, ShapeToGeom(nil))
	assert.Nil(t, ShapeToGeom(&shp.Null{}))
	assert.Nil(t, ShapeToGeom(&shp.MultiPoint{}))
}

func TestSignedArea(t *testing.T) {
	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	assert.InDelta(t, -1.0, signedArea(cw), 1e-12)

	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	assert.InDelta(t, 1.0, signedArea(ccw), 1e-12)
}

func TestRingContains(t *testing.T) {
	ring := []float64{0, 0, 0, 4, 4, 4, 4, 0, 0, 0}
	assert.True(t, ringContains(ring, 2, 2))
	assert.False(t, ringContains(ring, 5, 2))
	assert.False(t, ringContains(ring, -1, -1))
}

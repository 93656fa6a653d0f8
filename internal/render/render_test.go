package render

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/district-lens/internal/crs"
	"github.com/sells-group/district-lens/internal/district"
)

func square(x, y, s float64) *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{x, y, x, y + s, x + s, y + s, x + s, y, x, y}, []int{10})
}

func testTable(t *testing.T) *district.Table {
	t.Helper()
	records := []district.Record{
		{StateFP: "36", GEOID: "3610", ALand: 300, AWater: 100, Geometry: district.ShapeOf(square(-74, 40, 1)),
			Attributes: map[string]string{"NAMELSAD": "Congressional District 10"}},
		{StateFP: "02", GEOID: "0200", ALand: 1, AWater: 0, Geometry: district.ShapeOf(square(-150, 60, 1))},
		{StateFP: "11", GEOID: "1198", ALand: 0, AWater: 0, Geometry: district.ShapeOf(square(-77, 38, 1))},
		{StateFP: "06", GEOID: "0601", ALand: 1, AWater: 1, Geometry: district.ShapeOf(geom.NewPointFlat(geom.XY, []float64{0, 0}))},
	}
	table, err := district.Normalize(records, crs.WGS84, district.DefaultOptions())
	require.NoError(t, err)
	return table
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "#0000ff"},
		{0.5, "#0000ff"},
		{0.7, "#0000ff"},
		{0.85, "#004080"},
		{1, "#008000"},
		{1.5, "#008000"},
		{-1, "#0000ff"},
		{math.NaN(), "#0000ff"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorFor(tt.ratio), "ratio %v", tt.ratio)
	}
}

func TestColorFor_MonotonicBlend(t *testing.T) {
	prevG, prevB := -1.0, 2.0
	for i := 0; i <= 30; i++ {
		ratio := BlueStop + float64(i)*(1-BlueStop)/30
		c, err := colorful.Hex(ColorFor(ratio))
		require.NoError(t, err)
		assert.Zero(t, c.R, "ratio %v", ratio)
		assert.GreaterOrEqual(t, c.G, prevG, "ratio %v", ratio)
		assert.LessOrEqual(t, c.B, prevB, "ratio %v", ratio)
		prevG, prevB = c.G, c.B
	}
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection(testTable(t))
	require.Len(t, fc.Features, 3)

	f := fc.Features[0]
	assert.Equal(t, "3610", f.ID)
	assert.Equal(t, "3610", f.Properties["GEOID"])
	assert.Equal(t, "NY", f.Properties["state"])
	assert.Equal(t, "Congressional District 10", f.Properties["name"])
	assert.InDelta(t, 0.75, f.Properties["land_ratio"], 1e-12)
	assert.Equal(t, ColorFor(0.75), f.Properties["fill"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	assert.Equal(t, "Polygon", decoded.Features[1].Geometry.Type)
	assert.Equal(t, "0200", decoded.Features[1].Properties["GEOID"])
	assert.Equal(t, "AK", decoded.Features[1].Properties["state"])
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram(testTable(t), 4)
	require.NoError(t, err)
	require.Len(t, bins, 4)

	// Ratios: 0.75, 1, 0, 0.5.
	assert.Equal(t, []int{1, 0, 1, 2}, []int{bins[0].Count, bins[1].Count, bins[2].Count, bins[3].Count})
	assert.Equal(t, 0.0, bins[0].Lower)
	assert.Equal(t, 0.25, bins[0].Upper)
	assert.Equal(t, 1.0, bins[3].Upper)

	var total int
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 4, total)
}

func TestHistogram_DefaultBins(t *testing.T) {
	bins, err := Histogram(testTable(t), DefaultBins)
	require.NoError(t, err)
	assert.Len(t, bins, 50)
	assert.Equal(t, 1, bins[49].Count)
	assert.Equal(t, 1, bins[0].Count)
}

func TestHistogram_InvalidBins(t *testing.T) {
	for _, n := range []int{0, -1, MaxBins + 1} {
		_, err := Histogram(testTable(t), n)
		assert.Error(t, err, "bins %d", n)
	}
}

func TestSummary(t *testing.T) {
	s, err := Summary(testTable(t))
	require.NoError(t, err)

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0.5625, s.Mean, 1e-12)
	assert.InDelta(t, 0.625, s.Median, 1e-12)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.Greater(t, s.StdDev, 0.0)
}

func TestSummary_Empty(t *testing.T) {
	table, err := district.Normalize(nil, crs.WGS84, district.DefaultOptions())
	require.NoError(t, err)

	s, err := Summary(table)
	require.NoError(t, err)
	assert.Equal(t, LandRatioSummary{}, s)
}

func TestScatter(t *testing.T) {
	points := Scatter(testTable(t))
	require.Len(t, points, 4)
	assert.Equal(t, Point{GEOID: "3610", ALand: 300, AWater: 100, LandRatio: 0.75}, points[0])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testTable(t)))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 5)

	assert.Equal(t, "GEOID", sheet.Rows[0].Cells[0].String())
	row := sheet.Rows[1]
	assert.Equal(t, "3610", row.Cells[0].String())
	assert.Equal(t, "NY", row.Cells[2].String())
	assert.Equal(t, "Congressional District 10", row.Cells[3].String())

	ratio, err := row.Cells[6].Float()
	require.NoError(t, err)
	assert.InDelta(t, 0.75, ratio, 1e-12)
}

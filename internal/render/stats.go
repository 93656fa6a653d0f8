package render

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/district-lens/internal/district"
)

// DefaultBins is the land ratio histogram resolution.
const DefaultBins = 50

// MaxBins bounds client-requested histogram resolution.
const MaxBins = 200

// Bin is one equal-width histogram bucket [Lower, Upper). The last bucket
// also includes 1.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram counts land ratios into bins equal-width buckets over [0, 1].
func Histogram(t *district.Table, bins int) ([]Bin, error) {
	if bins < 1 || bins > MaxBins {
		return nil, eris.Errorf("render: bins must be between 1 and %d, got %d", MaxBins, bins)
	}

	ratios := t.LandRatios()
	slices.Sort(ratios)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, 1)
	// stat.Histogram buckets are half-open; widen the last edge so 1 counts.
	upper := dividers[bins]
	dividers[bins] = math.Nextafter(1, 2)

	counts := stat.Histogram(nil, dividers, ratios, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = upper
	return out, nil
}

// LandRatioSummary describes the land_ratio column.
type LandRatioSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Summary computes descriptive statistics of the land ratios. An empty table
// yields a zero summary.
func Summary(t *district.Table) (LandRatioSummary, error) {
	data := stats.Float64Data(t.LandRatios())
	s := LandRatioSummary{Count: data.Len()}
	if s.Count == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, eris.Wrap(err, "render: mean")
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, eris.Wrap(err, "render: median")
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, eris.Wrap(err, "render: min")
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, eris.Wrap(err, "render: max")
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, eris.Wrap(err, "render: std dev")
	}
	return s, nil
}

// Point is one district in the land vs water scatter plot.
type Point struct {
	GEOID     string  `json:"GEOID"`
	ALand     float64 `json:"ALAND"`
	AWater    float64 `json:"AWATER"`
	LandRatio float64 `json:"land_ratio"`
}

// Scatter lists each district's areas in row order.
func Scatter(t *district.Table) []Point {
	records := t.Records()
	out := make([]Point, len(records))
	for i, r := range records {
		out[i] = Point{GEOID: r.GEOID, ALand: r.ALand, AWater: r.AWater, LandRatio: r.LandRatio}
	}
	return out
}

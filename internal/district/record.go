// Package district turns a congressional district shapefile into the land
// ratio table the dashboard renders.
package district

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/district-lens/internal/tiger"
)

// Required DBF columns.
const (
	FieldStateFP = "STATEFP"
	FieldGEOID   = "GEOID"
	FieldALand   = "ALAND"
	FieldAWater  = "AWATER"
)

var requiredFields = []string{FieldStateFP, FieldGEOID, FieldALand, FieldAWater}

// Record is one congressional district.
type Record struct {
	// Index is the row position after normalization; it carries no meaning
	// outside the table.
	Index   int
	StateFP string
	GEOID   string
	// ALand and AWater are square metres.
	ALand     float64
	AWater    float64
	Geometry  Shape
	LandRatio float64
	// Attributes keeps every DBF column of the source row.
	Attributes map[string]string
}

// LandRatio is aland / (aland + awater), or 0 when the total is zero.
func LandRatio(aland, awater float64) float64 {
	total := aland + awater
	if total == 0 {
		return 0
	}
	r := aland / total
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// StateCode parses a FIPS state code such as "02".
func StateCode(statefp string) (int, error) {
	code, err := strconv.Atoi(strings.TrimSpace(statefp))
	if err != nil {
		return 0, eris.Wrapf(err, "district: state code %q", statefp)
	}
	return code, nil
}

// RecordsFromDataset converts shapefile features into records. It fails when a
// required column is missing or an area or state code is not a number.
func RecordsFromDataset(ds *tiger.Dataset) ([]Record, error) {
	for _, f := range requiredFields {
		if !ds.HasField(f) {
			return nil, eris.Errorf("district: missing column %s", f)
		}
	}

	records := make([]Record, 0, len(ds.Features))
	for i, f := range ds.Features {
		rec := Record{
			Index:      i,
			StateFP:    f.Attributes[FieldStateFP],
			GEOID:      f.Attributes[FieldGEOID],
			Geometry:   ShapeOf(f.Geometry),
			Attributes: f.Attributes,
		}
		if _, err := StateCode(rec.StateFP); err != nil {
			return nil, eris.Wrapf(err, "district: row %d", i)
		}

		var err error
		if rec.ALand, err = parseArea(f.Attributes[FieldALand]); err != nil {
			return nil, eris.Wrapf(err, "district: row %d %s", i, FieldALand)
		}
		if rec.AWater, err = parseArea(f.Attributes[FieldAWater]); err != nil {
			return nil, eris.Wrapf(err, "district: row %d %s", i, FieldAWater)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseArea reads a non-negative area. Blank DBF numerics read as zero.
func parseArea(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "district: area %q", s)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("district: area %q out of range", s)
	}
	return v, nil
}

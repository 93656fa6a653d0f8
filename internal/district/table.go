package district

import "github.com/sells-group/district-lens/internal/crs"

// Table is a normalized, read-only set of district records.
type Table struct {
	records []Record
	crs     crs.CRS
	byGEOID map[string]int
}

func newTable(records []Record, c crs.CRS) *Table {
	t := &Table{
		records: records,
		crs:     c,
		byGEOID: make(map[string]int, len(records)),
	}
	for i, r := range records {
		t.byGEOID[r.GEOID] = i
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// CRS returns the coordinate reference system of every geometry in the table.
func (t *Table) CRS() crs.CRS { return t.crs }

// Records returns a copy of the rows. Geometries and attribute maps are
// shared and must not be modified.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// ByGEOID looks up a district by its GEOID.
func (t *Table) ByGEOID(geoid string) (Record, bool) {
	i, ok := t.byGEOID[geoid]
	if !ok {
		return Record{}, false
	}
	return t.records[i], true
}

// LandRatios returns the land_ratio column in row order.
func (t *Table) LandRatios() []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.LandRatio
	}
	return out
}

// StateCount counts the rows of one state FIPS code.
func (t *Table) StateCount(statefp string) int {
	var n int
	for _, r := range t.records {
		if r.StateFP == statefp {
			n++
		}
	}
	return n
}

package render

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/district-lens/internal/district"
	"github.com/sells-group/district-lens/internal/tiger"
)

// FeatureCollection converts the table's polygonal rows to GeoJSON. The
// feature id and properties.GEOID both carry the GEOID so map libraries can
// key on either. Rows without a polygon are left out.
func FeatureCollection(t *district.Table) *geojson.FeatureCollection {
	records := t.Records()
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}

	for _, r := range records {
		switch r.Geometry.Kind() {
		case district.KindPolygon, district.KindMultiPolygon:
		default:
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.GEOID,
			Geometry:   r.Geometry.Geom(),
			Properties: properties(r),
		})
	}
	return fc
}

func properties(r district.Record) map[string]any {
	props := map[string]any{
		district.FieldGEOID:   r.GEOID,
		district.FieldStateFP: r.StateFP,
		district.FieldALand:   r.ALand,
		district.FieldAWater:  r.AWater,
		"land_ratio":          r.LandRatio,
		"fill":                ColorFor(r.LandRatio),
	}
	if abbr, ok := tiger.AbbrFromFIPS(r.StateFP); ok {
		props["state"] = abbr
	}
	if name := r.Attributes["NAMELSAD"]; name != "" {
		props["name"] = name
	}
	return props
}

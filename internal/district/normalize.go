package district

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/district-lens/internal/crs"
)

// Options configures normalization.
type Options struct {
	// AlaskaFIPS selects the rows whose multi-part geometry is reduced to its
	// largest polygon. Alaska spans the antimeridian, which single-polygon
	// renderers cannot draw.
	AlaskaFIPS string
	// MaxStateFIPS excludes rows with a state code at or above it (territories).
	MaxStateFIPS int
	// CollapseAll applies the largest-polygon rule to every row.
	CollapseAll bool
	// SkipReproject leaves geometries in the source CRS. The zero value
	// reprojects into Target.
	SkipReproject bool
	Target        crs.CRS
	// DefaultCRS is assumed when a shapefile has no .prj sidecar.
	DefaultCRS crs.CRS
}

// DefaultOptions returns the dashboard's normalization settings.
func DefaultOptions() Options {
	return Options{
		AlaskaFIPS:   "02",
		MaxStateFIPS: 57,
		Target:       crs.WGS84,
		DefaultCRS:   crs.NAD83,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.AlaskaFIPS == "" {
		o.AlaskaFIPS = def.AlaskaFIPS
	}
	if o.MaxStateFIPS <= 0 {
		o.MaxStateFIPS = def.MaxStateFIPS
	}
	if o.Target == (crs.CRS{}) {
		o.Target = def.Target
	}
	if o.DefaultCRS == (crs.CRS{}) {
		o.DefaultCRS = def.DefaultCRS
	}
	return o
}

// Normalize filters, repairs, reprojects and scores records whose geometries
// are in source. The input slice and its geometries are not modified.
//
// Running Normalize over a table's own Records and CRS yields an equal table.
func Normalize(records []Record, source crs.CRS, opts Options) (*Table, error) {
	opts = opts.withDefaults()
	log := zap.L().With(zap.String("component", "district.normalize"))

	alaska, err := StateCode(opts.AlaskaFIPS)
	if err != nil {
		return nil, err
	}

	// Drop territories and invalid codes.
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		code, err := StateCode(r.StateFP)
		if err != nil {
			return nil, eris.Wrapf(err, "district: GEOID %s", r.GEOID)
		}
		if code >= opts.MaxStateFIPS {
			continue
		}
		kept = append(kept, r)
	}

	isAlaska := func(r Record) bool {
		code, _ := StateCode(r.StateFP)
		return code == alaska
	}
	log.Info("alaska records before modification", zap.Int("count", countWhere(kept, isAlaska)))

	// Keep only the largest landmass where a single polygon is required.
	repaired := kept[:0]
	var removed int
	for _, r := range kept {
		if opts.CollapseAll || isAlaska(r) {
			poly, ok := r.Geometry.LargestPolygon()
			if !ok {
				removed++
				continue
			}
			r.Geometry = ShapeOf(poly)
		}
		repaired = append(repaired, r)
	}
	for i := range repaired {
		repaired[i].Index = i
	}

	log.Info("alaska records after modification", zap.Int("count", countWhere(repaired, isAlaska)))
	if removed > 0 {
		log.Debug("removed rows without a usable polygon", zap.Int("removed", removed))
	}

	target := source
	if !opts.SkipReproject {
		target = opts.Target
		tr, err := crs.NewTransform(source, target)
		if err != nil {
			return nil, eris.Wrap(err, "district: reproject")
		}
		defer tr.Close()
		for i := range repaired {
			g, err := tr.Apply(repaired[i].Geometry.Geom())
			if err != nil {
				return nil, eris.Wrapf(err, "district: reproject GEOID %s", repaired[i].GEOID)
			}
			repaired[i].Geometry = ShapeOf(g)
		}
	}
	log.Info("table crs after projection", zap.Stringer("crs", target))

	for i := range repaired {
		repaired[i].LandRatio = LandRatio(repaired[i].ALand, repaired[i].AWater)
	}

	return newTable(repaired, target), nil
}

func countWhere(records []Record, pred func(Record) bool) int {
	var n int
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

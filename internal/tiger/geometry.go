package tiger

import (
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// ShapeToGeom converts a go-shp shape into a go-geom geometry.
//
// Polygon records are split into rings. Clockwise rings are shells and
// counter-clockwise rings are holes of the shell containing their first
// vertex. A record with a single shell becomes a *geom.Polygon, one with
// several becomes a *geom.MultiPolygon, and one with no usable rings becomes
// an empty *geom.MultiPolygon. Returns nil for nil or unsupported shapes.
func ShapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case nil:
		return nil
	case *shp.Null:
		return nil
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.PolyLine:
		return polyLineToMultiLineString(s.Parts, s.Points)
	case *shp.Polygon:
		return ringsToPolygonal(s.Parts, s.Points)
	case *shp.PolygonZ:
		return ringsToPolygonal(s.Parts, s.Points)
	default:
		return nil
	}
}

// partRange returns the [start, end) point range of part i.
func partRange(parts []int32, numPoints, i int) (int, int) {
	start := int(parts[i])
	end := numPoints
	if i+1 < len(parts) {
		end = int(parts[i+1])
	}
	if start < 0 {
		start = 0
	}
	if end > numPoints {
		end = numPoints
	}
	return start, end
}

func flatPart(points []shp.Point, start, end int) []float64 {
	if end <= start {
		return nil
	}
	flat := make([]float64, 0, (end-start)*2)
	for _, p := range points[start:end] {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}

// polyLineToMultiLineString converts shapefile PolyLine parts to a geom.MultiLineString.
func polyLineToMultiLineString(parts []int32, points []shp.Point) geom.T {
	mls := geom.NewMultiLineString(geom.XY)
	for i := range parts {
		start, end := partRange(parts, len(points), i)
		flat := flatPart(points, start, end)
		if len(flat) < 4 {
			zap.L().Debug("tiger: skipping malformed linestring part", zap.Int("part", i))
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("tiger: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}
	return mls
}

type shell struct {
	ring  []float64
	holes [][]float64
}

// ringsToPolygonal groups shapefile rings into polygons.
func ringsToPolygonal(parts []int32, points []shp.Point) geom.T {
	var shells []*shell
	var holes [][]float64

	for i := range parts {
		start, end := partRange(parts, len(points), i)
		ring := flatPart(points, start, end)
		// A closed ring needs at least 4 positions.
		if len(ring) < 8 {
			zap.L().Debug("tiger: skipping malformed polygon ring", zap.Int("part", i))
			continue
		}
		if signedArea(ring) <= 0 {
			shells = append(shells, &shell{ring: ring})
		} else {
			holes = append(holes, ring)
		}
	}

	// Writers that ignore the clockwise-shell rule produce only CCW rings.
	if len(shells) == 0 {
		for _, h := range holes {
			shells = append(shells, &shell{ring: h})
		}
		holes = nil
	}

	for _, h := range holes {
		owner := containing(shells, h[0], h[1])
		if owner == nil {
			shells = append(shells, &shell{ring: h})
			continue
		}
		owner.holes = append(owner.holes, h)
	}

	polys := make([]*geom.Polygon, 0, len(shells))
	for _, s := range shells {
		flat := append([]float64(nil), s.ring...)
		ends := []int{len(flat)}
		for _, h := range s.holes {
			flat = append(flat, h...)
			ends = append(ends, len(flat))
		}
		polys = append(polys, geom.NewPolygonFlat(geom.XY, flat, ends))
	}

	if len(polys) == 1 {
		return polys[0]
	}
	mp := geom.NewMultiPolygon(geom.XY)
	for i, p := range polys {
		if err := mp.Push(p); err != nil {
			zap.L().Debug("tiger: skipping malformed polygon part", zap.Int("part", i), zap.Error(err))
		}
	}
	return mp
}

func containing(shells []*shell, x, y float64) *shell {
	for _, s := range shells {
		if ringContains(s.ring, x, y) {
			return s
		}
	}
	return nil
}

// signedArea is the shoelace area of a flat XY ring; positive when counter-clockwise.
func signedArea(ring []float64) float64 {
	var sum float64
	n := len(ring) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[2*i]*ring[2*j+1] - ring[2*j]*ring[2*i+1]
	}
	return sum / 2
}

// ringContains is an even-odd ray cast against a flat XY ring.
func ringContains(ring []float64, x, y float64) bool {
	inside := false
	n := len(ring) / 2
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[2*i], ring[2*i+1]
		xj, yj := ring[2*j], ring[2*j+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

package district

import "github.com/twpayne/go-geom"

// Kind tags the geometry variant of a district.
type Kind int

// Geometry variants. Anything other than a polygon or multi-polygon is
// unsupported and treated as absent where a polygon is required.
const (
	KindUnsupported Kind = iota
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unsupported"
	}
}

// Shape is a district geometry tagged with its variant.
type Shape struct {
	kind Kind
	g    geom.T
}

// ShapeOf tags g. Nil geometries and non-polygonal types are KindUnsupported.
func ShapeOf(g geom.T) Shape {
	switch t := g.(type) {
	case *geom.Polygon:
		if t != nil {
			return Shape{kind: KindPolygon, g: t}
		}
	case *geom.MultiPolygon:
		if t != nil {
			return Shape{kind: KindMultiPolygon, g: t}
		}
	}
	return Shape{kind: KindUnsupported, g: g}
}

// Kind returns the variant.
func (s Shape) Kind() Kind { return s.kind }

// Geom returns the underlying geometry, which may be nil.
func (s Shape) Geom() geom.T { return s.g }

// Polygon returns the geometry when it is a single polygon.
func (s Shape) Polygon() (*geom.Polygon, bool) {
	p, ok := s.g.(*geom.Polygon)
	return p, ok && s.kind == KindPolygon
}

// Area is the planar area in the units of the geometry's CRS.
func (s Shape) Area() float64 {
	switch s.kind {
	case KindPolygon:
		return s.g.(*geom.Polygon).Area()
	case KindMultiPolygon:
		return s.g.(*geom.MultiPolygon).Area()
	}
	return 0
}

// LargestPolygon returns the component with the greatest planar area. A
// single polygon is returned unchanged. ok is false for an empty
// multi-polygon or an unsupported geometry. Ties keep the earliest component.
func (s Shape) LargestPolygon() (*geom.Polygon, bool) {
	switch s.kind {
	case KindPolygon:
		return s.g.(*geom.Polygon), true
	case KindMultiPolygon:
		mp := s.g.(*geom.MultiPolygon)
		var best *geom.Polygon
		bestArea := -1.0
		for i := 0; i < mp.NumPolygons(); i++ {
			p := mp.Polygon(i)
			if a := p.Area(); a > bestArea {
				best, bestArea = p, a
			}
		}
		if best == nil {
			return nil, false
		}
		return best.SetSRID(mp.SRID()), true
	}
	return nil, false
}

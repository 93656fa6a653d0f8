package crs

import (
	"sync"

	"github.com/pebbe/proj/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Transform moves geometries from one CRS to another. It owns a PROJ context,
// which is not safe for concurrent use, so calls are serialised.
type Transform struct {
	from, to CRS
	identity bool

	mu  sync.Mutex
	ctx *proj.Context
	pj  *proj.PJ
}

// NewTransform builds the PROJ operation from one CRS to another. Equivalent
// systems get an identity transform that needs no PROJ objects.
func NewTransform(from, to CRS) (*Transform, error) {
	t := &Transform{from: from, to: to, identity: from.Equivalent(to)}
	if t.identity {
		return t, nil
	}
	t.ctx = proj.NewContext()
	pj, err := t.ctx.CreateCRS2CRS(from.Definition, to.Definition)
	if err != nil {
		t.ctx.Close()
		return nil, eris.Wrapf(ErrUnsupported, "crs: %s to %s: %v", from, to, err)
	}
	t.pj = pj
	return t, nil
}

// Close releases the PROJ objects.
func (t *Transform) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pj != nil {
		t.pj.Close()
		t.pj = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
}

// Apply returns g in the target CRS. The input is never modified; for an
// identity transform g itself is returned.
func (t *Transform) Apply(g geom.T) (geom.T, error) {
	if g == nil {
		return nil, nil
	}
	if t.identity {
		return g, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pj == nil {
		return nil, eris.New("crs: transform is closed")
	}

	switch c := g.(type) {
	case *geom.Point:
		c = c.Clone()
		if err := t.flat(c.FlatCoords(), c.Stride()); err != nil {
			return nil, err
		}
		return c.SetSRID(t.to.EPSG), nil
	case *geom.LineString:
		c = c.Clone()
		if err := t.flat(c.FlatCoords(), c.Stride()); err != nil {
			return nil, err
		}
		return c.SetSRID(t.to.EPSG), nil
	case *geom.MultiLineString:
		c = c.Clone()
		if err := t.flat(c.FlatCoords(), c.Stride()); err != nil {
			return nil, err
		}
		return c.SetSRID(t.to.EPSG), nil
	case *geom.Polygon:
		c = c.Clone()
		if err := t.flat(c.FlatCoords(), c.Stride()); err != nil {
			return nil, err
		}
		return c.SetSRID(t.to.EPSG), nil
	case *geom.MultiPolygon:
		c = c.Clone()
		if err := t.flat(c.FlatCoords(), c.Stride()); err != nil {
			return nil, err
		}
		return c.SetSRID(t.to.EPSG), nil
	}
	return nil, eris.Wrapf(ErrUnsupported, "crs: reproject %T", g)
}

// flat rewrites the XY pairs of a flat coordinate slice in place.
func (t *Transform) flat(flat []float64, stride int) error {
	if stride < 2 {
		return nil
	}
	for i := 0; i+1 < len(flat); i += stride {
		x, y, _, _, err := t.pj.Trans(proj.Fwd, flat[i], flat[i+1], 0, 0)
		if err != nil {
			return eris.Wrapf(err, "crs: transform (%g, %g)", flat[i], flat[i+1])
		}
		flat[i], flat[i+1] = x, y
	}
	return nil
}

// Reproject returns g transformed from one CRS to another. Callers moving
// many geometries should build one Transform and reuse it.
func Reproject(g geom.T, from, to CRS) (geom.T, error) {
	t, err := NewTransform(from, to)
	if err != nil {
		return nil, err
	}
	defer t.Close()
	return t.Apply(g)
}

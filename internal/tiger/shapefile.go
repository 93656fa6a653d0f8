package tiger

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Feature is a single shapefile record.
type Feature struct {
	// Attributes holds trimmed DBF values keyed by upper-case field name.
	Attributes map[string]string
	// Geometry is nil for null shapes.
	Geometry geom.T
}

// Dataset is the full contents of one shapefile.
type Dataset struct {
	Path     string
	Fields   []string
	Features []Feature
	// PRJ is the raw WKT of the .prj sidecar, empty when there is none.
	PRJ string
}

// HasField reports whether the dataset's DBF declares the named field.
func (d *Dataset) HasField(name string) bool {
	for _, f := range d.Fields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// ReadShapefile reads every record of a shapefile and its .prj sidecar.
func ReadShapefile(shpPath string) (ds *Dataset, err error) {
	// go-shp indexes record buffers without bounds checks on corrupt files.
	defer func() {
		if r := recover(); r != nil {
			ds, err = nil, eris.Errorf("tiger: corrupt shapefile %s: %v", shpPath, r)
		}
	}()

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "tiger: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name list.
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToUpper(strings.TrimSpace(strings.TrimRight(f.String(), "\x00")))
	}

	ds = &Dataset{Path: shpPath, Fields: names}
	var nullShapes int

	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(map[string]string, len(names))
		for idx, name := range names {
			val := strings.TrimRight(reader.Attribute(idx), "\x00")
			attrs[name] = strings.TrimSpace(val)
		}

		g := ShapeToGeom(shape)
		if g == nil {
			nullShapes++
		}
		ds.Features = append(ds.Features, Feature{Attributes: attrs, Geometry: g})
	}

	prj, err := ReadPRJ(shpPath)
	if err != nil {
		return nil, err
	}
	ds.PRJ = prj

	zap.L().Debug("tiger: shapefile read",
		zap.String("path", shpPath),
		zap.Int("records", len(ds.Features)),
		zap.Int("null_shapes", nullShapes),
		zap.Bool("has_prj", prj != ""),
	)

	return ds, nil
}

// ReadPRJ returns the contents of the .prj sidecar next to shpPath, or "" when
// the shapefile has none.
func ReadPRJ(shpPath string) (string, error) {
	base := strings.TrimSuffix(shpPath, filepath.Ext(shpPath))
	for _, ext := range []string{".prj", ".PRJ"} {
		data, err := os.ReadFile(base + ext)
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", eris.Wrapf(err, "tiger: read %s", base+ext)
		}
	}
	return "", nil
}

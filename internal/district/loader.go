package district

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/district-lens/internal/crs"
	"github.com/sells-group/district-lens/internal/tiger"
)

// Loader reads and normalizes district shapefiles, memoizing the result per
// path for the life of the process.
type Loader struct {
	opts Options
	read func(path string) (*tiger.Dataset, error)

	mu     sync.Mutex
	tables map[string]*Table
	group  singleflight.Group
}

// NewLoader returns a Loader that normalizes with opts.
func NewLoader(opts Options) *Loader {
	return &Loader{
		opts:   opts.withDefaults(),
		read:   tiger.ReadShapefile,
		tables: make(map[string]*Table),
	}
}

// Load returns the normalized table for path. Later calls for the same path
// return the same *Table without touching the disk.
func (l *Loader) Load(path string) (*Table, error) {
	key := cacheKey(path)

	l.mu.Lock()
	t, ok := l.tables[key]
	l.mu.Unlock()
	if ok {
		return t, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		l.mu.Lock()
		cached, ok := l.tables[key]
		l.mu.Unlock()
		if ok {
			return cached, nil
		}

		t, err := l.load(path)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.tables[key] = t
		l.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Forget drops the memoized table for path.
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	delete(l.tables, cacheKey(path))
	l.mu.Unlock()
}

func (l *Loader) load(path string) (*Table, error) {
	log := zap.L().With(zap.String("component", "district.loader"), zap.String("path", path))

	if err := CheckPath(path); err != nil {
		return nil, err
	}

	ds, err := l.read(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	source, err := l.sourceCRS(ds)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	records, err := RecordsFromDataset(ds)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	t, err := Normalize(records, source, l.opts)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	log.Info("districts loaded",
		zap.Int("records", len(records)),
		zap.Int("retained", t.Len()),
		zap.Stringer("source_crs", source),
		zap.Stringer("crs", t.CRS()),
	)
	return t, nil
}

// sourceCRS identifies the dataset's CRS from its .prj. Without reprojection
// an unrecognised .prj is tolerated since coordinates pass through untouched.
func (l *Loader) sourceCRS(ds *tiger.Dataset) (crs.CRS, error) {
	if ds.PRJ == "" {
		zap.L().Warn("district: shapefile has no .prj, assuming default CRS",
			zap.String("path", ds.Path),
			zap.Stringer("crs", l.opts.DefaultCRS),
		)
		return l.opts.DefaultCRS, nil
	}
	c, err := crs.Parse(ds.PRJ)
	if err == nil {
		return c, nil
	}
	if !l.opts.SkipReproject {
		return crs.CRS{}, err
	}
	zap.L().Warn("district: unrecognised .prj, coordinates left as-is",
		zap.String("path", ds.Path),
		zap.Error(err),
	)
	return l.opts.DefaultCRS, nil
}

// stat is swapped out in tests.
var stat = os.Stat

// CheckPath verifies that the shapefile and its directory exist.
func CheckPath(path string) error {
	dir := filepath.Dir(path)
	if _, err := stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path, Dir: true, Err: err}
		}
		return &AccessError{Path: dir, Err: err}
	}
	info, err := stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path, Err: err}
		}
		return &AccessError{Path: path, Err: err}
	}
	if info.IsDir() {
		return &NotFoundError{Path: path, Err: fs.ErrNotExist}
	}
	return nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

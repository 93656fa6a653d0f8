package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/district-lens/internal/district"
	"github.com/sells-group/district-lens/internal/render"
	"github.com/sells-group/district-lens/internal/tiger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// districtRow is a table row without geometry.
type districtRow struct {
	Index     int     `json:"index"`
	GEOID     string  `json:"GEOID"`
	StateFP   string  `json:"STATEFP"`
	State     string  `json:"state,omitempty"`
	Name      string  `json:"name,omitempty"`
	ALand     float64 `json:"ALAND"`
	AWater    float64 `json:"AWATER"`
	LandRatio float64 `json:"land_ratio"`
	Geometry  string  `json:"geometry_type"`
}

func toRow(r district.Record) districtRow {
	abbr, _ := tiger.AbbrFromFIPS(r.StateFP)
	return districtRow{
		Index:     r.Index,
		GEOID:     r.GEOID,
		StateFP:   r.StateFP,
		State:     abbr,
		Name:      r.Attributes["NAMELSAD"],
		ALand:     r.ALand,
		AWater:    r.AWater,
		LandRatio: r.LandRatio,
		Geometry:  r.Geometry.Kind().String(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// table loads the configured dataset, writing the error response itself when
// loading fails.
func (s *Server) table(w http.ResponseWriter) (*district.Table, bool) {
	t, err := s.source.Load(s.cfg.ShapefilePath)
	if err == nil {
		return t, true
	}

	var nf *district.NotFoundError
	var ae *district.AccessError
	var pe *district.ParseError
	switch {
	case errors.As(err, &nf):
		zap.L().Warn("server: shapefile missing", zap.String("path", s.cfg.ShapefilePath), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, nf.Message())
	case errors.As(err, &ae):
		zap.L().Error("server: shapefile inaccessible", zap.String("path", s.cfg.ShapefilePath), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, ae.Message())
	case errors.As(err, &pe):
		zap.L().Error("server: shapefile unreadable", zap.String("path", s.cfg.ShapefilePath), zap.Error(err))
		writeError(w, http.StatusInternalServerError, pe.Message())
	default:
		zap.L().Error("server: load table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load districts")
	}
	return nil, false
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}
	s.cached(w, "geojson", "application/geo+json", func() (any, error) {
		return render.FeatureCollection(t), nil
	})
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}
	records := t.Records()
	rows := make([]districtRow, len(records))
	for i, r := range records {
		rows[i] = toRow(r)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"crs":       t.CRS().String(),
		"count":     len(rows),
		"districts": rows,
	})
}

func (s *Server) handleDistrict(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}
	geoid := chi.URLParam(r, "geoid")
	rec, found := t.ByGEOID(geoid)
	if !found {
		writeError(w, http.StatusNotFound, "district "+geoid+" not found")
		return
	}
	writeJSON(w, http.StatusOK, toRow(rec))
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	bins := render.DefaultBins
	if v := r.URL.Query().Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > render.MaxBins {
			writeError(w, http.StatusBadRequest, "bins must be an integer between 1 and "+strconv.Itoa(render.MaxBins))
			return
		}
		bins = n
	}

	t, ok := s.table(w)
	if !ok {
		return
	}
	s.cached(w, "histogram/"+strconv.Itoa(bins), "application/json", func() (any, error) {
		hist, err := render.Histogram(t, bins)
		if err != nil {
			return nil, err
		}
		return map[string]any{"bins": hist}, nil
	})
}

func (s *Server) handleScatter(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": render.Scatter(t)})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}
	summary, err := render.Summary(t)
	if err != nil {
		zap.L().Error("server: summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to summarize districts")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleXLSX(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.table(w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteXLSX(&buf, t); err != nil {
		zap.L().Error("server: xlsx export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="districts.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

// cached writes the body stored under key, building and caching it on a miss.
func (s *Server) cached(w http.ResponseWriter, key, contentType string, build func() (any, error)) {
	if body := s.cache.Get(key); body != nil {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(body)
		return
	}

	v, err := build()
	if err != nil {
		zap.L().Error("server: build response", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render "+key)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("server: encode response", zap.String("key", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render "+key)
		return
	}
	s.cache.Put(key, body)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/export"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/internal/pathutil"
	"github.com/ecanbaykurt/Project-Explorer/internal/stats"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// projectsResponse is the envelope for GET /api/projects.
type projectsResponse struct {
	Generation uint64                   `json:"generation"`
	Source     string                   `json:"source"`
	Total      int                      `json:"total"`
	Matched    int                      `json:"matched"`
	Projects   []explorer.ProjectRecord `json:"projects"`
}

// statsResponse is the envelope for GET /api/stats.
type statsResponse struct {
	Generation uint64       `json:"generation"`
	Matched    int          `json:"matched"`
	Report     stats.Report `json:"report"`
}

// diagnosticsResponse is the envelope for GET /api/diagnostics.
type diagnosticsResponse struct {
	Generation  uint64                   `json:"generation"`
	Diagnostics explorer.LoadDiagnostics `json:"diagnostics"`
}

// reloadRequest is the optional body for POST /api/reload.
type reloadRequest struct {
	Path string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds, view, ok := s.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, projectsResponse{
		Generation: ds.Generation,
		Source:     ds.Source,
		Total:      ds.Len(),
		Matched:    len(view),
		Projects:   view,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds, view, ok := s.filteredView(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Generation: ds.Generation,
		Matched:    len(view),
		Report:     stats.Describe(view),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, view, ok := s.filteredView(w, r)
	if !ok {
		return
	}

	data, err := export.Bytes(view)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="projects.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write export response", "error", err.Error())
	}
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ds := s.store.Current()
	writeJSON(w, http.StatusOK, diagnosticsResponse{
		Generation:  ds.Generation,
		Diagnostics: ds.Diagnostics,
	})
}

// handleReload loads the dataset again and publishes it. A failed load
// leaves the previously published dataset in place.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	path := s.dataPath
	s.mu.RUnlock()
	if r.Body != nil && r.ContentLength != 0 {
		var req reloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if req.Path != "" {
			if err := pathutil.ValidateFilePath(req.Path); err != nil {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			path = req.Path
		}
	}

	ds, err := dataset.Load(path)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			logger.Warn("reload failed, keeping current dataset",
				"path", path,
				"error", loadErr.Error(),
			)
			writeJSONError(w, http.StatusUnprocessableEntity, loadErr.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.store.Replace(ds)
	s.mu.Lock()
	s.dataPath = path
	s.mu.Unlock()

	logger.Info("dataset reloaded",
		"path", path,
		"generation", ds.Generation,
		"rows", ds.Len(),
	)
	writeJSON(w, http.StatusOK, diagnosticsResponse{
		Generation:  ds.Generation,
		Diagnostics: ds.Diagnostics,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"generation": s.store.Current().Generation,
	})
}

// filteredView resolves the filter from query parameters and applies it to
// the current dataset. On failure it writes the error response and returns
// ok=false.
func (s *Server) filteredView(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, []explorer.ProjectRecord, bool) {
	state, err := parseFilterState(r.URL.Query(), s.cfg.Defaults.Filter)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	ds := s.store.Current()
	view, err := s.cache.Apply(ds, state)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return ds, view, true
}

// parseFilterState builds a FilterState from query parameters. Requests with
// no filtering parameters fall back to the configured defaults. Script
// predicates are never accepted over HTTP.
func parseFilterState(values url.Values, defaults explorer.FilterState) (explorer.FilterState, error) {
	if values.Has("script") {
		return explorer.FilterState{}, errors.New("script predicates are not accepted over HTTP")
	}

	filterParams := []string{
		"category", "q", "expr",
		"year_min", "year_max",
		"team_min", "team_max",
		"funding_min", "funding_max",
		"success_min", "success_max",
	}
	seen := false
	for _, name := range filterParams {
		if values.Has(name) {
			seen = true
			break
		}
	}
	if !seen {
		return defaults, nil
	}

	state := explorer.FilterState{
		Categories: values["category"],
		Search:     values.Get("q"),
		Expression: values.Get("expr"),
	}

	var err error
	if state.LaunchYear, err = parseIntRange(values, "year_min", "year_max"); err != nil {
		return explorer.FilterState{}, err
	}
	if state.TeamSize, err = parseIntRange(values, "team_min", "team_max"); err != nil {
		return explorer.FilterState{}, err
	}
	if state.Funding, err = parseFloatRange(values, "funding_min", "funding_max"); err != nil {
		return explorer.FilterState{}, err
	}
	if state.SuccessRate, err = parseFloatRange(values, "success_min", "success_max"); err != nil {
		return explorer.FilterState{}, err
	}

	if err := state.Validate(); err != nil {
		return explorer.FilterState{}, err
	}
	return state, nil
}

// parseIntRange reads a pair of bound parameters. A missing bound leaves
// that side of the range open.
func parseIntRange(values url.Values, minKey, maxKey string) (*explorer.IntRange, error) {
	if !values.Has(minKey) && !values.Has(maxKey) {
		return nil, nil
	}

	r := &explorer.IntRange{Min: math.MinInt, Max: math.MaxInt}
	if raw := values.Get(minKey); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not an integer", minKey, raw)
		}
		r.Min = v
	}
	if raw := values.Get(maxKey); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not an integer", maxKey, raw)
		}
		r.Max = v
	}
	return r, nil
}

func parseFloatRange(values url.Values, minKey, maxKey string) (*explorer.FloatRange, error) {
	if !values.Has(minKey) && !values.Has(maxKey) {
		return nil, nil
	}

	r := &explorer.FloatRange{Min: math.Inf(-1), Max: math.Inf(1)}
	if raw := values.Get(minKey); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a number", minKey, raw)
		}
		r.Min = v
	}
	if raw := values.Get(maxKey); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a number", maxKey, raw)
		}
		r.Max = v
	}
	return r, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to write response", "error", err.Error())
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ecanbaykurt/Project-Explorer/internal/config"
	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

func fixtureRecords() []explorer.ProjectRecord {
	return []explorer.ProjectRecord{
		{
			Title:       "Project A",
			Category:    "AI/ML",
			Description: "Vision pipeline",
			Coords:      &explorer.Coordinates{X: 1, Y: 2, Z: 3},
			LaunchYear:  2021,
			TeamSize:    5,
			Funding:     200000,
			SuccessRate: 0.8,
		},
		{
			Title:       "Project B",
			Category:    "IoT",
			Description: "Sensor mesh",
			LaunchYear:  2019,
			TeamSize:    12,
			Funding:     50000,
			SuccessRate: 0.4,
		},
	}
}

func testServer(records []explorer.ProjectRecord) *Server {
	ds := dataset.GenerateSample(0, 0)
	ds.Records = records
	ds.Diagnostics.RowsRead = len(records)
	ds.Diagnostics.RowsLoaded = len(records)

	cfg := &config.DashboardConfig{Title: "Test"}
	return New(cfg, dataset.NewStore(ds))
}

func decodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", body, err)
	}
}

func TestProjectsEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())

	tests := []struct {
		name        string
		query       string
		wantMatched int
		wantTitles  []string
	}{
		{"no filter returns all", "", 2, []string{"Project A", "Project B"}},
		{"category filter", "?category=AI/ML", 1, []string{"Project A"}},
		{"year range", "?year_min=2018&year_max=2020", 1, []string{"Project B"}},
		{"open-ended year range", "?year_min=2020", 1, []string{"Project A"}},
		{"search", "?q=sensor", 1, []string{"Project B"}},
		{"expression", "?expr="+
			"funding+%3E+100000", 1, []string{"Project A"}},
		{"empty result", "?category=Blockchain", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/projects"+tt.query, nil)
			srv.routes().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}

			var resp projectsResponse
			decodeJSON(t, rec.Body.String(), &resp)
			if resp.Total != 2 {
				t.Errorf("Total = %d, want 2", resp.Total)
			}
			if resp.Matched != tt.wantMatched {
				t.Errorf("Matched = %d, want %d", resp.Matched, tt.wantMatched)
			}
			if len(resp.Projects) != len(tt.wantTitles) {
				t.Fatalf("got %d projects, want %d", len(resp.Projects), len(tt.wantTitles))
			}
			for i, want := range tt.wantTitles {
				if resp.Projects[i].Title != want {
					t.Errorf("project %d = %q, want %q", i, resp.Projects[i].Title, want)
				}
			}
		})
	}
}

func TestProjectsRejectsBadInput(t *testing.T) {
	srv := testServer(fixtureRecords())

	tests := []struct {
		name  string
		query string
	}{
		{"non-integer bound", "?year_min=abc"},
		{"inverted range", "?year_min=2024&year_max=2018"},
		{"script over http", "?script=function+match(r)%7Breturn+true%7D"},
		{"invalid expression", "?expr=funding+%3E%3E%3E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/projects"+tt.query, nil)
			srv.routes().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
			var resp errorResponse
			decodeJSON(t, rec.Body.String(), &resp)
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestProjectsUsesConfiguredDefaults(t *testing.T) {
	srv := testServer(fixtureRecords())
	srv.cfg.Defaults.Filter = explorer.FilterState{Categories: []string{"IoT"}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	srv.routes().ServeHTTP(rec, req)

	var resp projectsResponse
	decodeJSON(t, rec.Body.String(), &resp)
	if resp.Matched != 1 || resp.Projects[0].Title != "Project B" {
		t.Errorf("defaults not applied: %+v", resp)
	}

	// Any explicit filter parameter overrides the defaults entirely
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/projects?q=vision", nil)
	srv.routes().ServeHTTP(rec, req)

	decodeJSON(t, rec.Body.String(), &resp)
	if resp.Matched != 1 || resp.Projects[0].Title != "Project A" {
		t.Errorf("explicit filter not applied: %+v", resp)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp statsResponse
	decodeJSON(t, rec.Body.String(), &resp)
	if resp.Matched != 2 {
		t.Errorf("Matched = %d, want 2", resp.Matched)
	}
	if resp.Report.Summary.TotalProjects != 2 {
		t.Errorf("TotalProjects = %d, want 2", resp.Report.Summary.TotalProjects)
	}
	if resp.Report.Summary.TotalFunding != 250000 {
		t.Errorf("TotalFunding = %v, want 250000", resp.Report.Summary.TotalFunding)
	}
	if len(resp.Report.ByCategory) != 2 {
		t.Errorf("ByCategory = %v", resp.Report.ByCategory)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export?category=IoT", nil)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "projects.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one row: %q", len(lines), lines)
	}
	if lines[0] != strings.Join(dataset.Columns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Project B,IoT,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/diagnostics", nil)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp diagnosticsResponse
	decodeJSON(t, rec.Body.String(), &resp)
	if resp.Diagnostics.RowsLoaded != 2 {
		t.Errorf("RowsLoaded = %d, want 2", resp.Diagnostics.RowsLoaded)
	}
	if resp.Generation == 0 {
		t.Error("expected a nonzero generation")
	}
}

func TestReloadEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())
	before := srv.store.Current()

	csvPath := filepath.Join(t.TempDir(), "projects.csv")
	content := strings.Join(dataset.Columns, ",") + "\n" +
		"Reloaded,AI/ML,desc,1,2,3,2022,4,1000,0.5\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"path": "` + strings.ReplaceAll(csvPath, `\`, `\\`) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/reload", body)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	after := srv.store.Current()
	if after.Generation <= before.Generation {
		t.Errorf("generation did not advance: %d -> %d", before.Generation, after.Generation)
	}
	if after.Len() != 1 || after.Records[0].Title != "Reloaded" {
		t.Errorf("unexpected records: %+v", after.Records)
	}
}

func TestReloadConcurrent(t *testing.T) {
	srv := testServer(fixtureRecords())
	mux := srv.routes()

	// Two data files with distinct row counts so each reload lands on a
	// consistent dataset no matter how the requests interleave.
	dir := t.TempDir()
	header := strings.Join(dataset.Columns, ",") + "\n"
	paths := [2]string{
		filepath.Join(dir, "one.csv"),
		filepath.Join(dir, "two.csv"),
	}
	contents := [2]string{
		header + "Solo,AI/ML,desc,1,2,3,2022,4,1000,0.5\n",
		header + "Pair A,IoT,desc,1,2,3,2020,6,2000,0.4\n" +
			"Pair B,IoT,desc,4,5,6,2021,7,3000,0.6\n",
	}
	for i := range paths {
		if err := os.WriteFile(paths[i], []byte(contents[i]), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Alternating reloads plus concurrent reads exercise the data path
	// bookkeeping from multiple goroutines.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		path := paths[i%2]
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			body := strings.NewReader(`{"path": "` + strings.ReplaceAll(path, `\`, `\\`) + `"}`)
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", body))
			if rec.Code != http.StatusOK {
				t.Errorf("reload status = %d, body %s", rec.Code, rec.Body.String())
			}
		}()
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("projects status = %d", rec.Code)
			}
		}()
	}
	wg.Wait()

	// An empty body reuses whichever path the last reload set.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("bodyless reload status = %d, body %s", rec.Code, rec.Body.String())
	}

	after := srv.store.Current()
	if n := after.Len(); n != 1 && n != 2 {
		t.Errorf("final dataset has %d records, want 1 or 2", n)
	}
}

func TestReloadFailureKeepsCurrentDataset(t *testing.T) {
	srv := testServer(fixtureRecords())
	before := srv.store.Current()

	// Header missing the success_rate column is a fatal load error.
	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	content := "title,category,description,x,y,z,launch_year,team_size,funding\n" +
		"Bad,AI/ML,desc,1,2,3,2022,4,1000\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"path": "` + strings.ReplaceAll(csvPath, `\`, `\\`) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/reload", body)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	if srv.store.Current() != before {
		t.Error("failed reload must keep the current dataset")
	}
}

func TestReloadRejectsTraversalPath(t *testing.T) {
	srv := testServer(fixtureRecords())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"path": "../../etc/passwd"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/reload", body)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(fixtureRecords())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(fixtureRecords())

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/projects"},
		{http.MethodPost, "/api/stats"},
		{http.MethodDelete, "/api/export"},
		{http.MethodGet, "/api/reload"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, nil)
		srv.routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func TestParseFilterStateOpenBounds(t *testing.T) {
	state, err := parseFilterState(map[string][]string{"funding_max": {"100000"}}, explorer.FilterState{})
	if err != nil {
		t.Fatalf("parseFilterState returned error: %v", err)
	}
	if state.Funding == nil {
		t.Fatal("expected a funding range")
	}
	if !math.IsInf(state.Funding.Min, -1) {
		t.Errorf("Min = %v, want -Inf", state.Funding.Min)
	}
	if state.Funding.Max != 100000 {
		t.Errorf("Max = %v", state.Funding.Max)
	}
}

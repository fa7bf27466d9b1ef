package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/randomizer"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/romtest"
	"github.com/MJE43/gbwild/internal/store"
)

// mockDB is a store.DB whose writes fail on demand
type mockDB struct {
	saveErr error
}

func (m *mockDB) Close() error                                           { return nil }
func (m *mockDB) Migrate() error                                         { return nil }
func (m *mockDB) SaveRun(run *store.Run) error                           { return m.saveErr }
func (m *mockDB) SaveTables(runID string, t []store.TableRecord) error   { return nil }
func (m *mockDB) SaveRecord(run *store.Run, t []store.TableRecord) error { return m.saveErr }
func (m *mockDB) GetRun(id string) (*store.Run, error)                   { return nil, store.ErrRunNotFound }
func (m *mockDB) GetTables(runID string) ([]store.TableRecord, error)    { return nil, nil }
func (m *mockDB) ListRuns(q store.RunsQuery) (*store.RunsList, error)    { return &store.RunsList{}, nil }

func quietLogger() Option {
	return WithLogger(log.New(io.Discard, "", 0))
}

func newSQLiteServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	db, err := store.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	return NewServer(db, append([]Option{quietLogger()}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) EngineError {
	t.Helper()
	var e EngineError
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return e
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		server *Server
		want   HealthStatus
	}{
		{"with history", newSQLiteServer(t), HealthStatusHealthy},
		{"without history", NewServer(nil, quietLogger()), HealthStatusDegraded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, tc.server.Routes(), "GET", "/health", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp HealthCheckResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tc.want {
				t.Errorf("status = %s, want %s", resp.Status, tc.want)
			}
			if resp.Checks["codecs"].Status != HealthStatusHealthy {
				t.Errorf("codecs check = %+v", resp.Checks["codecs"])
			}
		})
	}
}

func TestGamesEndpoint(t *testing.T) {
	w := do(t, NewServer(nil, quietLogger()).Routes(), "GET", "/api/v1/games", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp GamesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Games) == 0 || len(resp.Generations) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if resp.EngineVersion == "" {
		t.Error("Expected engine version in response")
	}
}

func TestVersionEndpoint(t *testing.T) {
	w := do(t, NewServer(nil, quietLogger()).Routes(), "GET", "/version", nil)
	var v VersionInfo
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if v.EngineVersion != EngineVersion {
		t.Errorf("version = %+v", v)
	}
}

func TestRandomizeEndpoint(t *testing.T) {
	s := newSQLiteServer(t)
	h := s.Routes()
	img := romtest.Build(t, "POKEMON_GLD", 1<<20)

	w := do(t, h, "POST", "/api/v1/randomize?seed=12345", img.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(HeaderSeed); got != "12345" {
		t.Errorf("X-Seed = %q", got)
	}
	if got := w.Header().Get(HeaderGeneration); got != "II" {
		t.Errorf("X-Generation = %q", got)
	}
	if got := w.Header().Get(HeaderTitle); got != "POKEMON_GLD" {
		t.Errorf("X-Title = %q", got)
	}
	runID := w.Header().Get(HeaderRunID)
	if runID == "" {
		t.Fatal("X-Run-ID missing")
	}

	want, err := randomizer.Randomize(rom.New(img.Bytes()), engine.Config{Seed: engine.IntSeed(12345), RandomizeWild: true}, randomizer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(w.Body.Bytes(), want.Image.Bytes()) {
		t.Error("response body differs from a direct run with the same seed")
	}

	run := do(t, h, "GET", "/api/v1/runs/"+runID, nil)
	if run.Code != http.StatusOK {
		t.Fatalf("GET run: status %d", run.Code)
	}
	var rr RunResponse
	if err := json.NewDecoder(run.Body).Decode(&rr); err != nil {
		t.Fatal(err)
	}
	if rr.Run.Seed != "12345" || rr.Run.SeedInput != "12345" || len(rr.Tables) != romtest.Gen2Tables {
		t.Errorf("run = %+v, %d tables", rr.Run, len(rr.Tables))
	}

	list := do(t, h, "GET", "/api/v1/runs?generation=2", nil)
	var runs store.RunsList
	if err := json.NewDecoder(list.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if runs.TotalCount != 1 || runs.Runs[0].ID != runID {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRandomizeIdentity(t *testing.T) {
	img := romtest.Build(t, "POKEMON RED", 1<<20)
	w := do(t, NewServer(nil, quietLogger()).Routes(), "POST", "/api/v1/randomize?randomize_wild=false", img.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), img.Bytes()) {
		t.Error("randomize_wild=false changed the image")
	}
	if w.Header().Get(HeaderRunID) != "" {
		t.Error("run ID set without history")
	}
}

func TestRandomizeHistoryFailureStillServes(t *testing.T) {
	s := NewServer(&mockDB{saveErr: errors.New("disk full")}, quietLogger())
	img := romtest.Build(t, "POKEMON RED", 1<<20)
	w := do(t, s.Routes(), "POST", "/api/v1/randomize?seed=1", img.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if w.Header().Get(HeaderRunID) != "" {
		t.Error("run ID set after failed save")
	}
}

func TestRandomizeErrors(t *testing.T) {
	red := romtest.Build(t, "POKEMON RED", 1<<20).Bytes()

	tests := []struct {
		name     string
		target   string
		body     []byte
		maxBytes int
		status   int
		errType  string
	}{
		{"bad bool", "/api/v1/randomize?allow_legendaries=maybe", red, 0, http.StatusBadRequest, ErrTypeInvalidParams},
		{"empty body", "/api/v1/randomize", []byte{}, 0, http.StatusBadRequest, ErrTypeInvalidParams},
		{"too large", "/api/v1/randomize", red, 1024, http.StatusRequestEntityTooLarge, ErrTypeRomTooLarge},
		{"unknown title", "/api/v1/randomize", romtest.Header("TETRIS", 32*1024, 0), 0, http.StatusUnprocessableEntity, ErrTypeUnrecognizedRom},
		{"inspect unknown", "/api/v1/inspect", romtest.Header("ZELDA", 32*1024, 0), 0, http.StatusUnprocessableEntity, ErrTypeUnrecognizedRom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(nil, quietLogger(), WithMaxROMBytes(tc.maxBytes))
			w := do(t, s.Routes(), "POST", tc.target, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
			e := decodeError(t, w)
			if e.Type != tc.errType {
				t.Errorf("type = %s, want %s", e.Type, tc.errType)
			}
			if w.Header().Get("X-Error-Category") == "" {
				t.Error("X-Error-Category missing")
			}
		})
	}
}

func TestInspectEndpoint(t *testing.T) {
	img := romtest.Build(t, "POKEMON BLUE", 1<<20)
	w := do(t, NewServer(nil, quietLogger()).Routes(), "POST", "/api/v1/inspect", img.Bytes())
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		Report struct {
			Info struct {
				Title string `json:"title"`
			} `json:"info"`
			Tables []json.RawMessage `json:"tables"`
		} `json:"report"`
		Size string `json:"size"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Report.Info.Title != "POKEMON BLUE" || len(resp.Report.Tables) != romtest.Gen1Tables || resp.Size != "1.0 MiB" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRunsEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		server *Server
		target string
		status int
	}{
		{"history disabled list", NewServer(nil, quietLogger()), "/api/v1/runs", http.StatusServiceUnavailable},
		{"history disabled get", NewServer(nil, quietLogger()), "/api/v1/runs/x", http.StatusServiceUnavailable},
		{"missing run", NewServer(&mockDB{}, quietLogger()), "/api/v1/runs/nope", http.StatusNotFound},
		{"bad page", NewServer(&mockDB{}, quietLogger()), "/api/v1/runs?page=0", http.StatusBadRequest},
		{"bad generation", NewServer(&mockDB{}, quietLogger()), "/api/v1/runs?generation=5", http.StatusBadRequest},
		{"list", NewServer(&mockDB{}, quietLogger()), "/api/v1/runs?page=2&per_page=10", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, tc.server.Routes(), "GET", tc.target, nil)
			if w.Code != tc.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		errType string
		want    ErrorCategory
	}{
		{ErrTypeInvalidParams, CategoryValidation},
		{ErrTypeRomTooLarge, CategoryValidation},
		{ErrTypeUnrecognizedRom, CategoryRom},
		{ErrTypeUnknownSpecies, CategoryRom},
		{ErrTypeRunNotFound, CategoryHistory},
		{ErrTypeTableLength, CategorySystem},
		{ErrTypeTimeout, CategoryTimeout},
		{"anything", CategorySystem},
	}
	for _, tc := range tests {
		if got := GetErrorCategory(tc.errType); got != tc.want {
			t.Errorf("GetErrorCategory(%s) = %s, want %s", tc.errType, got, tc.want)
		}
	}
}

func TestRecoveryHandler(t *testing.T) {
	eh := NewErrorHandler(log.New(io.Discard, "", 0))
	h := eh.RecoveryHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := do(t, h, "GET", "/", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	if e := decodeError(t, w); e.Type != ErrTypeInternal {
		t.Errorf("type = %s", e.Type)
	}
}

func TestHandleErrorRecordsCause(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		cause  any
	}{
		{"wrapped", fmt.Errorf("load run: %w", store.ErrRunNotFound), http.StatusNotFound, "run not found"},
		{"bare", errors.New("disk full"), http.StatusInternalServerError, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eh := NewErrorHandler(log.New(io.Discard, "", 0))
			w := httptest.NewRecorder()
			eh.HandleError(w, httptest.NewRequest("GET", "/api/v1/runs/x", nil), tc.err)
			if w.Code != tc.status {
				t.Fatalf("status %d, want %d", w.Code, tc.status)
			}
			if got := decodeError(t, w).Context["cause"]; got != tc.cause {
				t.Errorf("cause = %v, want %v", got, tc.cause)
			}
		})
	}
}

package api

import (
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/randomizer"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/store"
)

// Response headers describing a randomized image.
const (
	HeaderSeed       = "X-Seed"
	HeaderGeneration = "X-Generation"
	HeaderTitle      = "X-Title"
	HeaderRunID      = "X-Run-ID"
	HeaderOutputHash = "X-Output-SHA256"
)

// errHistoryDisabled is returned by history routes when no database is
// configured.
var errHistoryDisabled = NewError(ErrTypeServiceUnavailable, "run history is disabled").Build()

// handleRandomize randomizes the uploaded ROM and returns the new image.
func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	cfg, err := ParseRandomizeQuery(r.URL.Query())
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	data, err := readROM(w, r, s.maxROMBytes)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := randomizer.Randomize(rom.New(data), cfg, randomizer.Options{})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	runID := ""
	if s.db != nil {
		run, err := store.Record(s.db, res, EngineVersion)
		if err != nil {
			// The image is still valid; history is best effort.
			s.logger.Printf("history_save_failed request_id=%s err=%v", requestID, err)
		} else {
			runID = run.ID
		}
	}

	s.logger.Printf(
		"randomize_completed request_id=%s title=%q generation=%s seed=%s allow_legendaries=%t randomize_wild=%t tables=%d slots=%d size=%s run_id=%s",
		requestID, res.Info.Title, res.Info.Generation, res.Seed, cfg.AllowLegendaries, cfg.RandomizeWild,
		res.Stats.Tables, res.Stats.Randomized, humanize.IBytes(uint64(res.Image.Len())), runID,
	)

	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputName(res.Info)))
	h.Set("X-Engine-Version", EngineVersion)
	h.Set(HeaderSeed, res.Seed.String())
	h.Set(HeaderGeneration, res.Info.Generation.String())
	h.Set(HeaderTitle, res.Info.Title)
	h.Set(HeaderOutputHash, res.OutputSHA256)
	if runID != "" {
		h.Set(HeaderRunID, runID)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Image.Bytes()); err != nil {
		s.logger.Printf("response_write_failed request_id=%s err=%v", requestID, err)
	}
}

// handleInspect decodes the uploaded ROM and reports its tables.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	data, err := readROM(w, r, s.maxROMBytes)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	report, err := randomizer.Inspect(rom.New(data))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, InspectResponse{
		Report:        report,
		Size:          humanize.IBytes(uint64(len(data))),
		EngineVersion: EngineVersion,
	})
}

// handleListGames returns the supported cartridge titles.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	gens := make([]string, len(game.Generations))
	for i, g := range game.Generations {
		gens[i] = g.String()
	}
	s.writeJSON(w, http.StatusOK, GamesResponse{
		Games:         game.ListGames(),
		Generations:   gens,
		EngineVersion: EngineVersion,
	})
}

// handleListRuns returns a page of run history.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, errHistoryDisabled)
		return
	}
	query, err := ParseRunsQuery(r.URL.Query())
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	runs, err := s.db.ListRuns(query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one run and its table assignments.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleError(w, r, errHistoryDisabled)
		return
	}
	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	tables, err := s.db.GetTables(id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Run: run, Tables: tables, EngineVersion: EngineVersion})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}

func outputName(info game.Info) string {
	ext := ".gb"
	if info.Generation == game.GenerationII {
		ext = ".gbc"
	}
	return "randomized" + ext
}

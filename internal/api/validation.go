package api

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/store"
)

// fieldError names the query parameter that failed validation.
type fieldError struct {
	field   string
	message string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// ParseRandomizeQuery builds the run configuration from query parameters.
func ParseRandomizeQuery(q url.Values) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.Seed = engine.ParseSeed(q.Get("seed"))

	var err error
	if cfg.AllowLegendaries, err = boolParam(q, "allow_legendaries", cfg.AllowLegendaries); err != nil {
		return engine.Config{}, err
	}
	if cfg.RandomizeWild, err = boolParam(q, "randomize_wild", cfg.RandomizeWild); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// ParseRunsQuery reads paging and filter parameters for the history list.
func ParseRunsQuery(q url.Values) (store.RunsQuery, error) {
	var query store.RunsQuery
	var err error
	if query.Page, err = intParam(q, "page", 1); err != nil {
		return query, err
	}
	if query.PerPage, err = intParam(q, "per_page", 50); err != nil {
		return query, err
	}
	if query.PerPage > 500 {
		return query, &fieldError{"per_page", "must be at most 500"}
	}
	if g := q.Get("generation"); g != "" {
		gen, err := game.ParseGeneration(g)
		if err != nil {
			return query, &fieldError{"generation", err.Error()}
		}
		query.Generation = gen.String()
	}
	return query, nil
}

// readROM reads the request body up to limit bytes.
func readROM(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &fieldError{"body", "ROM image is required"}
	}
	return data, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, &fieldError{name, fmt.Sprintf("invalid boolean %q", s)}
	}
	return v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, &fieldError{name, fmt.Sprintf("must be a positive integer, got %q", s)}
	}
	return v, nil
}

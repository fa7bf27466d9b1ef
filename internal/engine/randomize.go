// Package engine assigns new species to decoded encounter tables.
package engine

import (
	"errors"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/species"
)

// WildStream names the generator stream used for wild encounter draws.
const WildStream = "wild"

// ErrSeedUnset is returned when randomization is requested without a seed.
// Callers resolve the seed first so it can be reported.
var ErrSeedUnset = errors.New("seed is not set")

// Config controls a randomization run. It is passed by value and never
// modified.
type Config struct {
	Seed             Seed
	AllowLegendaries bool
	RandomizeWild    bool
}

// DefaultConfig returns the default run settings with an unset seed.
func DefaultConfig() Config {
	return Config{RandomizeWild: true}
}

// Stats summarizes a run.
type Stats struct {
	Tables     int `json:"tables"`
	Slots      int `json:"slots"`
	Empty      int `json:"empty"`
	Randomized int `json:"randomized"`
	Changed    int `json:"changed"`
	Legendary  int `json:"legendary"`
}

// Randomize returns new tables with every non-empty slot's species drawn
// uniformly from the catalog. Levels, rates and empty slots are kept. With
// RandomizeWild unset the tables are returned as copies. The input tables
// are not modified.
func Randomize(tables []codec.Table, catalog *species.Catalog, cfg Config) ([]codec.Table, Stats, error) {
	out := make([]codec.Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}

	stats := Stats{Tables: len(tables)}
	for _, t := range tables {
		for _, s := range t.Slots {
			stats.Slots++
			if s.Empty() {
				stats.Empty++
			}
		}
	}
	if !cfg.RandomizeWild {
		return out, stats, nil
	}
	if !cfg.Seed.IsSet() {
		return nil, Stats{}, ErrSeedUnset
	}

	for _, t := range tables {
		for _, s := range t.Slots {
			if s.Empty() {
				continue
			}
			if !catalog.Contains(int(s.Species)) {
				return nil, Stats{}, &species.UnknownSpeciesError{Generation: catalog.Generation(), Species: int(s.Species)}
			}
		}
	}

	eligible := catalog.Eligible(cfg.AllowLegendaries)
	gen := NewGenerator(cfg.Seed, WildStream)
	for ti := range out {
		slots := out[ti].Slots
		for si := range slots {
			if slots[si].Empty() {
				continue
			}
			pick := eligible[gen.Intn(len(eligible))]
			if pick != slots[si].Species {
				stats.Changed++
			}
			if legendary, _ := catalog.IsLegendary(int(pick)); legendary {
				stats.Legendary++
			}
			slots[si].Species = pick
			stats.Randomized++
		}
	}
	return out, stats, nil
}

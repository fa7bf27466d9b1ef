package store

import (
	"github.com/MJE43/gbwild/internal/randomizer"
)

// FromResult builds the history rows for a completed run.
func FromResult(res *randomizer.Result, engineVersion string) (*Run, []TableRecord) {
	run := &Run{
		Title:            res.Info.Title,
		Generation:       res.Info.Generation.String(),
		SeedInput:        res.Seed.Input(),
		Seed:             res.Seed.String(),
		AllowLegendaries: res.Config.AllowLegendaries,
		RandomizeWild:    res.Config.RandomizeWild,
		TableCount:       res.Stats.Tables,
		SlotsRandomized:  res.Stats.Randomized,
		InputSHA256:      res.InputSHA256,
		OutputSHA256:     res.OutputSHA256,
		EngineVersion:    engineVersion,
	}

	tables := make([]TableRecord, len(res.Tables))
	for i, t := range res.Tables {
		species := make([]int, len(t.Slots))
		for j, s := range t.Slots {
			species[j] = int(s.Species)
		}
		tables[i] = TableRecord{
			Index:    i,
			Name:     t.Name(),
			Category: string(t.Category),
			Offset:   t.Offset,
			Species:  species,
		}
	}
	return run, tables
}

// Record saves a completed run and its tables atomically, returning the
// stored run.
func Record(db DB, res *randomizer.Result, engineVersion string) (*Run, error) {
	run, tables := FromResult(res, engineVersion)
	if err := db.SaveRecord(run, tables); err != nil {
		return nil, err
	}
	return run, nil
}

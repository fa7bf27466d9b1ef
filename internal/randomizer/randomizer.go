// Package randomizer runs the full load, detect, decode, randomize, encode
// and write pipeline over one cartridge image.
package randomizer

import (
	"fmt"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/species"
)

// FeatureWild names the wild encounter feature in run summaries.
const FeatureWild = "wild encounters"

// Options carries optional hooks.
type Options struct {
	// OnTable is called after each table is encoded.
	OnTable func(done, total int)
}

// Result describes a completed run. Image is the randomized copy; the input
// image is never modified.
type Result struct {
	Info         game.Info
	Config       engine.Config
	Seed         engine.Seed
	Tables       []codec.Table
	Stats        engine.Stats
	Image        *rom.Image
	InputSHA256  string
	OutputSHA256 string
}

// Features lists the modified features, empty when nothing was randomized.
func (r *Result) Features() []string {
	if r.Config.RandomizeWild {
		return []string{FeatureWild}
	}
	return nil
}

// Summary is the one-line report printed after a run.
func (r *Result) Summary() string {
	features := "no features"
	if f := r.Features(); len(f) > 0 {
		features = f[0]
		for _, x := range f[1:] {
			features += ", " + x
		}
	}
	return fmt.Sprintf("Randomized %s (Generation %d) using seed %s. Modified features: %s.",
		r.Info.Title, r.Info.Generation.Number(), r.Seed, features)
}

// Randomize randomizes a copy of img. An unset seed in cfg is replaced by a
// random one, reported in the result.
func Randomize(img *rom.Image, cfg engine.Config, opts Options) (*Result, error) {
	info, c, tables, err := decode(img)
	if err != nil {
		return nil, err
	}
	cat, err := species.For(info.Generation)
	if err != nil {
		return nil, err
	}

	seed, err := cfg.Seed.Resolve()
	if err != nil {
		return nil, err
	}
	cfg.Seed = seed

	out, stats, err := engine.Randomize(tables, cat, cfg)
	if err != nil {
		return nil, err
	}

	encoded := make([][]byte, len(out))
	for i, t := range out {
		b, err := c.Encode(t)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
		if opts.OnTable != nil {
			opts.OnTable(i+1, len(out))
		}
	}

	result := img.Clone()
	for i, t := range out {
		if err := result.Patch(t.Offset, encoded[i]); err != nil {
			return nil, fmt.Errorf("write %s: %w", t.Name(), err)
		}
	}
	if result.Len() != img.Len() {
		return nil, fmt.Errorf("output is %d bytes, input %d", result.Len(), img.Len())
	}

	return &Result{
		Info:         info,
		Config:       cfg,
		Seed:         seed,
		Tables:       out,
		Stats:        stats,
		Image:        result,
		InputSHA256:  img.SHA256(),
		OutputSHA256: result.SHA256(),
	}, nil
}

// RandomizeFile loads in, randomizes it and saves the result to out. out is
// only written when every earlier step succeeds.
func RandomizeFile(in, out string, cfg engine.Config, opts Options) (*Result, error) {
	img, err := rom.Load(in)
	if err != nil {
		return nil, err
	}
	res, err := Randomize(img, cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := rom.Save(res.Image, out); err != nil {
		return nil, err
	}
	return res, nil
}

func decode(img *rom.Image) (game.Info, codec.Codec, []codec.Table, error) {
	info, err := game.Detect(img)
	if err != nil {
		return game.Info{}, nil, nil, err
	}
	c, err := codec.For(info.Generation)
	if err != nil {
		return game.Info{}, nil, nil, err
	}
	tables, err := codec.DecodeAll(c, img)
	if err != nil {
		return game.Info{}, nil, nil, err
	}
	return info, c, tables, nil
}

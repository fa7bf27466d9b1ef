package randomizer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/romtest"
)

func seeded(s string) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Seed = engine.ParseSeed(s)
	return cfg
}

func TestRandomizeDeterministicBytes(t *testing.T) {
	tests := []struct {
		title string
		size  int
	}{
		{"POKEMON RED", 1 << 20},
		{"POKEMON BLUE", 256 * 1024},
		{"POKEMON_GLD", 1 << 20},
		{"PM_CRYSTAL", 1 << 21},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			img := romtest.Build(t, tc.title, tc.size)
			a, err := Randomize(img, seeded("12345"), Options{})
			if err != nil {
				t.Fatal(err)
			}
			b, err := Randomize(img, seeded("12345"), Options{})
			if err != nil {
				t.Fatal(err)
			}
			c, err := Randomize(img, engine.Config{Seed: engine.IntSeed(12345), RandomizeWild: true}, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a.Image.Bytes(), b.Image.Bytes()) || !bytes.Equal(a.Image.Bytes(), c.Image.Bytes()) {
				t.Error("same seed produced different output")
			}
			if a.Image.Len() != tc.size {
				t.Errorf("output length %d, want %d", a.Image.Len(), tc.size)
			}
			if a.OutputSHA256 == a.InputSHA256 {
				t.Error("randomized output equals input")
			}

			d, _ := Randomize(img, seeded("different"), Options{})
			if bytes.Equal(a.Image.Bytes(), d.Image.Bytes()) {
				t.Error("different seeds produced identical output")
			}
		})
	}
}

func TestRandomizeOnlyTouchesSpecies(t *testing.T) {
	img := romtest.Build(t, "POKEMON_SLV", 1<<20)
	before := img.Clone()

	res, err := Randomize(img, seeded("bytes"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Bytes(), before.Bytes()) {
		t.Fatal("input image modified")
	}

	inTable := make([]bool, img.Len())
	c, _ := codec.For(game.GenerationII)
	descs, err := c.Locate(img)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range descs {
		for i := d.Offset; i < d.Offset+d.Length; i++ {
			inTable[i] = true
		}
	}
	out := res.Image.Bytes()
	for i, b := range img.Bytes() {
		if !inTable[i] && out[i] != b {
			t.Fatalf("byte 0x%X outside encounter tables changed", i)
		}
	}

	again, err := codec.DecodeAll(c, res.Image)
	if err != nil {
		t.Fatalf("decode randomized output: %v", err)
	}
	orig, _ := codec.DecodeAll(c, img)
	for i := range again {
		for j, s := range again[i].Slots {
			o := orig[i].Slots[j]
			if s.Level != o.Level || s.Rate != o.Rate || s.Empty() != o.Empty() {
				t.Fatalf("%s slot %d: %+v -> %+v", again[i].Name(), j, o, s)
			}
		}
	}
}

func TestRandomizeDisabledIsIdentity(t *testing.T) {
	img := romtest.Build(t, "POKEMON BLUE", 1<<19)
	res, err := Randomize(img, engine.Config{RandomizeWild: false}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res.Image.Bytes(), img.Bytes()) {
		t.Error("disabled randomization changed bytes")
	}
	if !strings.HasSuffix(res.Summary(), "Modified features: no features.") {
		t.Errorf("Summary() = %q", res.Summary())
	}
}

func TestRandomizeResolvesSeed(t *testing.T) {
	img := romtest.Build(t, "POKEMON RED", 1<<20)
	res, err := Randomize(img, engine.DefaultConfig(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Seed.IsSet() {
		t.Fatal("seed not resolved")
	}

	replay, err := Randomize(img, seeded(res.Seed.String()), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(replay.Image.Bytes(), res.Image.Bytes()) {
		t.Error("replaying the reported seed gave different output")
	}
}

func TestSummary(t *testing.T) {
	img := romtest.Build(t, "POKEMON RED", 1<<20)
	res, err := Randomize(img, seeded("12345"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := "Randomized POKEMON RED (Generation 1) using seed 12345. Modified features: wild encounters."
	if got := res.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestProgressHook(t *testing.T) {
	img := romtest.Build(t, "POKEMON_GLD", 1<<20)
	var calls, last, total int
	_, err := Randomize(img, seeded("p"), Options{OnTable: func(done, n int) {
		calls++
		last, total = done, n
	}})
	if err != nil {
		t.Fatal(err)
	}
	if n := romtest.Gen2Tables; calls != n || last != n || total != n {
		t.Errorf("calls=%d last=%d total=%d, want %d", calls, last, total, n)
	}
}

func TestRandomizeRejects(t *testing.T) {
	tests := []struct {
		name string
		img  *rom.Image
	}{
		{"tiny", rom.New(make([]byte, 0x40))},
		{"unknown title", rom.New(romtest.Header("TETRIS", 32*1024, 0))},
		{"gen2 layout missing", rom.New(romtest.Header("POKEMON_GLD", 32*1024, rom.CGBSupported))},
		{"gen1 layout missing", rom.New(romtest.Header("POKEMON RED", 32*1024, 0))},
		{"no wild data address", rom.New(romtest.Header("POKEMON YELLOW", 1<<20, 0))},
		{"odd size", rom.New(romtest.Header("POKEMON RED", 48*1024, 0))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Randomize(tc.img, seeded("1"), Options{})
			var ur *game.UnrecognizedRomError
			if !errors.As(err, &ur) {
				t.Fatalf("got %v, want UnrecognizedRomError", err)
			}
		})
	}
}

func TestRandomizeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "red.gb")
	out := filepath.Join(dir, "red-random.gb")
	img := romtest.Build(t, "POKEMON RED", 1<<20)
	if err := os.WriteFile(in, img.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := RandomizeFile(in, out, seeded("file"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(written, res.Image.Bytes()) {
		t.Error("saved file differs from result image")
	}
}

func TestRandomizeFileFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tetris.gb")
	out := filepath.Join(dir, "out.gb")
	if err := os.WriteFile(in, romtest.Header("TETRIS", 32*1024, 0), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := RandomizeFile(in, out, seeded("x"), Options{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output exists after failure: %v", err)
	}

	_, err := RandomizeFile(filepath.Join(dir, "missing.gb"), out, seeded("x"), Options{})
	var fa *rom.FileAccessError
	if !errors.As(err, &fa) {
		t.Errorf("got %v, want FileAccessError", err)
	}
}

func TestInspect(t *testing.T) {
	img := romtest.Build(t, "PM_CRYSTAL", 1<<21)
	r, err := Inspect(img)
	if err != nil {
		t.Fatal(err)
	}
	if r.Info.Generation != game.GenerationII || r.Info.Title != "PM_CRYSTAL" {
		t.Errorf("info = %+v", r.Info)
	}
	if r.Categories[codec.CategoryGrass] != romtest.Gen2GrassTables || r.Categories[codec.CategoryWater] != romtest.Gen2WaterTables {
		t.Errorf("categories = %v", r.Categories)
	}
	if !r.HeaderChecksumOK {
		t.Error("header checksum reported bad")
	}
	if r.Slots != romtest.Gen2Slots || r.EmptySlots != romtest.EmptySlots(game.GenerationII) {
		t.Errorf("slots = %d empty = %d", r.Slots, r.EmptySlots)
	}
}

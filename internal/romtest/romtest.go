// Package romtest builds synthetic cartridges whose wild data sits at the
// real games' addresses in the real games' formats, for use in tests.
package romtest

import (
	"math/bits"
	"testing"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/species"
)

const (
	titleOffset    = 0x134
	cgbOffset      = 0x143
	romSizeOffset  = 0x148
	checksumOffset = 0x14D
)

// Generation I: Gen1Maps pointers. The last map reuses map 0's entry, the
// other maps numbered 3 mod 4 share an entry with no encounters, and maps
// divisible by five also have water encounters.
const (
	Gen1Maps        = 40
	Gen1GrassTables = 30
	Gen1WaterTables = 6
	Gen1Tables      = Gen1GrassTables + Gen1WaterTables
	Gen1Slots       = Gen1Tables * 10
)

// Generation II list lengths, in ROM order.
const (
	Gen2JohtoGrass  = 12
	Gen2JohtoWater  = 6
	Gen2KantoGrass  = 8
	Gen2KantoWater  = 4
	Gen2GrassTables = Gen2JohtoGrass + Gen2KantoGrass
	Gen2WaterTables = Gen2JohtoWater + Gen2KantoWater
	Gen2Tables      = Gen2GrassTables + Gen2WaterTables
	Gen2Slots       = Gen2GrassTables*21 + Gen2WaterTables*3
)

// EmptySlots is the number of empty slots Build leaves: the last slot of
// every table whose ROM-order index is a multiple of five.
func EmptySlots(g game.Generation) int {
	n := Gen1Tables
	if g == game.GenerationII {
		n = Gen2Tables
	}
	return (n + 4) / 5
}

// Header returns a zeroed image of size bytes carrying title in its header.
// cgb is written to the CGB flag byte when non-zero.
func Header(title string, size int, cgb byte) []byte {
	data := make([]byte, size)
	copy(data[titleOffset:titleOffset+16], title)
	if cgb != 0 {
		data[cgbOffset] = cgb
	}
	if size >= 32*1024 {
		data[romSizeOffset] = byte(bits.TrailingZeros(uint(size / (32 * 1024))))
	}
	var x byte
	for i := titleOffset; i < checksumOffset; i++ {
		x = x - data[i] - 1
	}
	data[checksumOffset] = x
	return data
}

// Build returns a ROM whose wild data is populated with deterministic
// contents. Every fifth table in ROM order has its last slot left empty.
func Build(t testing.TB, title string, size int) *rom.Image {
	t.Helper()

	spec, ok := game.Lookup(title)
	if !ok {
		t.Fatalf("romtest: %q is not a supported title", title)
	}
	start, ok := codec.WildDataOffset(spec.Name)
	if !ok {
		t.Fatalf("romtest: no wild data address for %s", spec.Name)
	}

	var (
		cgb  byte
		data []byte
	)
	if spec.Generation == game.GenerationII {
		cgb = rom.CGBSupported
		data = gen2Data(t)
	} else {
		data = gen1Data(t, start)
	}

	img := rom.New(Header(title, size, cgb))
	if err := img.Patch(start, data); err != nil {
		t.Fatalf("romtest: wild data for %s: %v", spec.Name, err)
	}
	return img
}

// slots appends the n (level, species) pairs of table ti, the table's
// index in ROM order.
func slots(t testing.TB, out []byte, gen game.Generation, ti, n int) []byte {
	max := 151
	if gen == game.GenerationII {
		max = 251
	}
	for si := 0; si < n; si++ {
		if ti%5 == 0 && si == n-1 {
			out = append(out, 0, 0)
			continue
		}
		b, err := species.ToROM(gen, species.ID(1+(ti*13+si*7)%max))
		if err != nil {
			t.Fatalf("romtest: %v", err)
		}
		out = append(out, byte(2+(ti+si)%60), b)
	}
	return out
}

// gen1Data returns the pointer table followed by the entries it points to.
func gen1Data(t testing.TB, start int) []byte {
	const bank = 3
	pointers := make([]byte, 0, 2*(Gen1Maps+1))
	var entries []byte
	base := start + 2*(Gen1Maps+1)
	addr := func(pos int) uint16 { return rom.BankAddress(bank, base+pos) }

	empty := -1
	var first uint16
	ti := 0
	for m := 0; m < Gen1Maps; m++ {
		var ptr uint16
		switch {
		case m == Gen1Maps-1:
			ptr = first
		case m%4 == 3:
			if empty < 0 {
				empty = len(entries)
				entries = append(entries, 0, 0)
			}
			ptr = addr(empty)
		default:
			ptr = addr(len(entries))
			entries = append(entries, byte(10+ti%50))
			entries = slots(t, entries, game.GenerationI, ti, 10)
			ti++
			if m%5 == 0 {
				entries = append(entries, byte(10+ti%50))
				entries = slots(t, entries, game.GenerationI, ti, 10)
				ti++
			} else {
				entries = append(entries, 0)
			}
		}
		if m == 0 {
			first = ptr
		}
		pointers = append(pointers, byte(ptr), byte(ptr>>8))
	}
	pointers = append(pointers, 0xFF, 0xFF)
	return append(pointers, entries...)
}

// gen2Data returns the four wild data lists.
func gen2Data(t testing.TB) []byte {
	var out []byte
	ti := 0
	list := func(count int, groupBase int, grass bool) {
		for i := 0; i < count; i++ {
			out = append(out, byte(groupBase+i%10), byte(i+1))
			if grass {
				out = append(out, 10, 15, 20)
				out = slots(t, out, game.GenerationII, ti, 21)
			} else {
				out = append(out, 10)
				out = slots(t, out, game.GenerationII, ti, 3)
			}
			ti++
		}
		out = append(out, 0xFF)
	}
	list(Gen2JohtoGrass, 1, true)
	list(Gen2JohtoWater, 1, false)
	list(Gen2KantoGrass, 11, true)
	list(Gen2KantoWater, 11, false)
	return out
}

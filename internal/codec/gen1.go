package codec

import (
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
)

// Generation I keeps a table of little-endian pointers, one per map id,
// ending at 0xFFFF. Each points into bank 3 at a grass rate byte, followed
// by ten (level, species) pairs only when the rate is nonzero, then a water
// rate byte and its pairs likewise. Many maps share one entry.
const (
	gen1WildBank = 3
	gen1Entry    = 21
	gen1Slots    = 10
	gen1Rates    = 1
	gen1MaxMaps  = 256
	gen1MaxRate  = 0xFF
	gen1EndOfMap = 0xFFFF
)

// gen1WildPointers is the file offset of the wild data pointer table.
var gen1WildPointers = map[string]int{
	"Pokémon Red":  0xCEEB,
	"Pokémon Blue": 0xCEEB,
}

var gen1Layout = &entryLayout{
	length:  gen1Entry,
	rates:   gen1Rates,
	maxRate: gen1MaxRate,
	blocks:  []slotBlock{{rate: 0, time: TimeAny, start: gen1Rates, slots: gen1Slots}},
}

type gen1Codec struct {
	layoutCodec
}

func newGen1Codec() *gen1Codec {
	return &gen1Codec{layoutCodec{gen: game.GenerationI}}
}

func (c *gen1Codec) Locate(img *rom.Image) ([]Descriptor, error) {
	table, err := c.wildDataStart(img, gen1WildPointers)
	if err != nil {
		return nil, err
	}

	var (
		descs []Descriptor
		grass int
		water int
		seen  = map[int]bool{}
	)
	for m := 0; ; m++ {
		if m == gen1MaxMaps {
			return nil, c.layoutError(img, "pointer table at 0x%X has no terminator", table)
		}
		slot := table + 2*m
		ptr, err := img.ReadU16(slot)
		if err != nil {
			return nil, c.layoutError(img, "pointer table at 0x%X: %v", table, err)
		}
		if ptr == gen1EndOfMap {
			break
		}
		if ptr < rom.BankSize || ptr >= 2*rom.BankSize {
			return nil, c.layoutError(img, "map %d pointer 0x%04X is not a banked address", m, ptr)
		}

		entry := rom.BankOffset(gen1WildBank, ptr)
		if seen[entry] {
			continue
		}
		seen[entry] = true

		pos := entry
		for _, cat := range []Category{CategoryGrass, CategoryWater} {
			rate, err := c.byteAt(img, pos)
			if err != nil {
				return nil, err
			}
			if rate == 0 {
				pos++
				continue
			}
			if pos+gen1Entry > (gen1WildBank+1)*rom.BankSize {
				return nil, c.layoutError(img, "map %d %s entry crosses the end of bank %d", m, cat, gen1WildBank)
			}
			d := Descriptor{
				Category:      cat,
				Map:           m,
				PointerOffset: slot,
				Offset:        pos,
				Length:        gen1Entry,
				layout:        gen1Layout,
			}
			if cat == CategoryGrass {
				d.Group, d.Index = "Kanto grass", grass
				grass++
			} else {
				d.Group, d.Index = "Kanto water", water
				water++
			}
			descs = append(descs, d)
			pos += gen1Entry
		}
	}

	if len(descs) == 0 {
		return nil, c.layoutError(img, "pointer table at 0x%X holds no encounter tables", table)
	}
	return descs, nil
}

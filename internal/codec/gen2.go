package codec

import (
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
)

// Generation II wild data is four consecutive lists, each ended by 0xFF:
// Johto grass, Johto water, Kanto grass, Kanto water. Every entry starts
// with its map group and number. Grass entries then carry one rate per time
// of day, each followed by seven (level, species) pairs. Water entries are
// one rate and three pairs.
const (
	gen2GrassEntry = 45
	gen2GrassSlots = 7
	gen2WaterEntry = 7
	gen2WaterSlots = 3
	gen2MapHeader  = 2
	gen2MaxRate    = 100
	gen2MaxEntries = 256
	gen2EndOfList  = 0xFF
)

// gen2WildData is the file offset of the Johto grass list.
var gen2WildData = map[string]int{
	"Pokémon Gold":    0x2AB35,
	"Pokémon Silver":  0x2AB35,
	"Pokémon Crystal": 0x2A5E9,
}

var gen2GrassLayout = &entryLayout{
	length:  gen2GrassEntry,
	rates:   3,
	maxRate: gen2MaxRate,
	blocks: []slotBlock{
		{rate: 0, time: TimeMorning, start: 3, slots: gen2GrassSlots},
		{rate: 1, time: TimeDay, start: 3 + 2*gen2GrassSlots, slots: gen2GrassSlots},
		{rate: 2, time: TimeNight, start: 3 + 4*gen2GrassSlots, slots: gen2GrassSlots},
	},
}

var gen2WaterLayout = &entryLayout{
	length:  gen2WaterEntry,
	rates:   1,
	maxRate: gen2MaxRate,
	blocks:  []slotBlock{{rate: 0, time: TimeAny, start: 1, slots: gen2WaterSlots}},
}

type gen2List struct {
	name     string
	category Category
	layout   *entryLayout
}

var gen2Lists = []gen2List{
	{"Johto grass", CategoryGrass, gen2GrassLayout},
	{"Johto water", CategoryWater, gen2WaterLayout},
	{"Kanto grass", CategoryGrass, gen2GrassLayout},
	{"Kanto water", CategoryWater, gen2WaterLayout},
}

type gen2Codec struct {
	layoutCodec
}

func newGen2Codec() *gen2Codec {
	return &gen2Codec{layoutCodec{gen: game.GenerationII}}
}

func (c *gen2Codec) Locate(img *rom.Image) ([]Descriptor, error) {
	pos, err := c.wildDataStart(img, gen2WildData)
	if err != nil {
		return nil, err
	}

	var descs []Descriptor
	for _, l := range gen2Lists {
		for i := 0; ; i++ {
			if i == gen2MaxEntries {
				return nil, c.layoutError(img, "%s list has no terminator", l.name)
			}
			group, err := c.byteAt(img, pos)
			if err != nil {
				return nil, err
			}
			if group == gen2EndOfList {
				pos++
				break
			}
			if group == 0 {
				return nil, c.layoutError(img, "%s entry %d at 0x%X has map group 0", l.name, i, pos)
			}
			number, err := c.byteAt(img, pos+1)
			if err != nil {
				return nil, err
			}
			if _, err := img.Slice(pos+gen2MapHeader, l.layout.length); err != nil {
				return nil, c.layoutError(img, "%s entry %d: %v", l.name, i, err)
			}
			descs = append(descs, Descriptor{
				Group:    l.name,
				Index:    i,
				Category: l.category,
				Map:      int(group)<<8 | int(number),
				Offset:   pos + gen2MapHeader,
				Length:   l.layout.length,
				layout:   l.layout,
			})
			pos += gen2MapHeader + l.layout.length
		}
	}

	if len(descs) == 0 {
		return nil, c.layoutError(img, "wild data holds no encounter tables")
	}
	return descs, nil
}

// WildDataOffset returns the file offset where a game's wild data begins:
// the pointer table for Generation I, the first list for Generation II.
func WildDataOffset(name string) (int, bool) {
	if off, ok := gen1WildPointers[name]; ok {
		return off, true
	}
	off, ok := gen2WildData[name]
	return off, ok
}

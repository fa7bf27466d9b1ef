// Package codec locates, decodes and re-encodes wild encounter tables.
package codec

import (
	"fmt"
	"sort"

	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
)

// Category groups tables by encounter method. It is used for reporting.
type Category string

const (
	CategoryGrass Category = "grass"
	CategoryWater Category = "water"
)

// TimeOfDay marks the Generation II grass block a slot belongs to.
type TimeOfDay string

const (
	TimeAny     TimeOfDay = ""
	TimeMorning TimeOfDay = "morning"
	TimeDay     TimeOfDay = "day"
	TimeNight   TimeOfDay = "night"
)

// Descriptor locates one encounter table inside a ROM. Offset and Length
// cover the rate bytes and slot pairs only, never the map header.
type Descriptor struct {
	Group    string   `json:"group"`
	Index    int      `json:"index"`
	Category Category `json:"category"`
	// Map is the Generation I map id, or the Generation II map group and
	// number packed as group<<8 | number.
	Map int `json:"map"`
	// PointerOffset is the pointer table slot of the first map using the
	// entry (Generation I only).
	PointerOffset int `json:"pointer_offset,omitempty"`
	Offset        int `json:"offset"`
	Length        int `json:"length"`

	layout *entryLayout
}

// Name identifies the table for reporting.
func (d Descriptor) Name() string {
	return fmt.Sprintf("%s #%d", d.Group, d.Index)
}

// Slot is one possible encounter. Species is a National Dex number. Only
// Species is written back on encode.
type Slot struct {
	Rate    uint8     `json:"rate"`
	Level   uint8     `json:"level"`
	Species uint8     `json:"species"`
	Time    TimeOfDay `json:"time,omitempty"`
}

// Empty reports an unused slot (level and species both zero).
func (s Slot) Empty() bool {
	return s.Level == 0 && s.Species == 0
}

// Table is a decoded encounter table. Slot order matches byte order.
type Table struct {
	Descriptor
	Rates []uint8 `json:"-"` // per-slot rates are in Slots
	Slots []Slot  `json:"slots"`

	raw []byte
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	c := t
	c.Rates = append([]uint8(nil), t.Rates...)
	c.Slots = append([]Slot(nil), t.Slots...)
	c.raw = append([]byte(nil), t.raw...)
	return c
}

// Species returns the species of every slot in order.
func (t Table) Species() []uint8 {
	out := make([]uint8, len(t.Slots))
	for i, s := range t.Slots {
		out[i] = s.Species
	}
	return out
}

// Codec is the per-generation table strategy.
type Codec interface {
	Generation() game.Generation
	// Locate walks the wild data at the game's known address and returns
	// one descriptor per table, in ROM order. A ROM whose wild data does not
	// parse is an UnrecognizedRomError.
	Locate(img *rom.Image) ([]Descriptor, error)
	// Decode reads the span described by d.
	Decode(img *rom.Image, d Descriptor) (Table, error)
	// Encode serializes t into exactly t.Length bytes. Only species bytes
	// differ from the decoded span.
	Encode(t Table) ([]byte, error)
}

var registry = map[game.Generation]Codec{}

// Register adds a codec to the registry.
func Register(c Codec) {
	registry[c.Generation()] = c
}

// For returns the codec for generation g.
func For(g game.Generation) (Codec, error) {
	c, ok := registry[g]
	if !ok {
		return nil, fmt.Errorf("no encounter codec for generation %s", g)
	}
	return c, nil
}

// ListCodecs returns the registered generations in order.
func ListCodecs() []game.Generation {
	gens := make([]game.Generation, 0, len(registry))
	for g := range registry {
		gens = append(gens, g)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens
}

func init() {
	Register(newGen1Codec())
	Register(newGen2Codec())
}

// DecodeAll decodes every table the codec locates.
func DecodeAll(c Codec, img *rom.Image) ([]Table, error) {
	descs, err := c.Locate(img)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(descs))
	for _, d := range descs {
		t, err := c.Decode(img, d)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Apply encodes each table and patches it into img at its own offset.
// Every table is encoded before the first byte is written, so a failed
// encode leaves img unchanged.
func Apply(c Codec, img *rom.Image, tables []Table) error {
	encoded := make([][]byte, len(tables))
	for i, t := range tables {
		b, err := c.Encode(t)
		if err != nil {
			return err
		}
		encoded[i] = b
	}
	for i, t := range tables {
		if err := img.Patch(t.Offset, encoded[i]); err != nil {
			return fmt.Errorf("patch %s: %w", t.Name(), err)
		}
	}
	return nil
}

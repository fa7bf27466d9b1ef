package codec

import (
	"fmt"

	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
	"github.com/MJE43/gbwild/internal/species"
)

const (
	minLevel = 1
	maxLevel = 100
)

// slotBlock is a run of (level, species) pairs sharing one rate byte.
type slotBlock struct {
	rate  int // index into the entry's leading rate bytes
	time  TimeOfDay
	start int // offset of the first level byte within the entry
	slots int
}

// entryLayout is the byte layout of one encounter table: leading rate bytes
// followed by blocks of (level, species) pairs.
type entryLayout struct {
	length  int
	rates   int
	maxRate int
	blocks  []slotBlock
}

func (l *entryLayout) slotCount() int {
	n := 0
	for _, b := range l.blocks {
		n += b.slots
	}
	return n
}

// layoutCodec holds the decode/encode logic shared by the generation codecs.
// Locate is generation specific.
type layoutCodec struct {
	gen game.Generation
}

func (lc layoutCodec) Generation() game.Generation {
	return lc.gen
}

func (lc layoutCodec) layoutError(img *rom.Image, format string, args ...any) error {
	return &game.UnrecognizedRomError{
		Reason: fmt.Sprintf("Generation %s layout: ", lc.gen) + fmt.Sprintf(format, args...),
		Title:  rom.Title(img.Bytes()),
		Size:   img.Len(),
	}
}

func (lc layoutCodec) byteAt(img *rom.Image, offset int) (byte, error) {
	b, err := img.Slice(offset, 1)
	if err != nil {
		return 0, lc.layoutError(img, "wild data runs past the image: %v", err)
	}
	return b[0], nil
}

// wildDataStart detects img and returns its game's wild data address.
func (lc layoutCodec) wildDataStart(img *rom.Image, addrs map[string]int) (int, error) {
	info, err := game.Detect(img)
	if err != nil {
		return 0, err
	}
	if info.Generation != lc.gen {
		return 0, lc.layoutError(img, "%s is a Generation %s game", info.Name, info.Generation)
	}
	addr, ok := addrs[info.Name]
	if !ok {
		return 0, lc.layoutError(img, "no known wild data address for %s", info.Name)
	}
	return addr, nil
}

func (lc layoutCodec) Decode(img *rom.Image, d Descriptor) (Table, error) {
	l := d.layout
	if l == nil || l.length != d.Length {
		return Table{}, fmt.Errorf("descriptor %s was not produced by the Generation %s codec", d.Name(), lc.gen)
	}

	raw, err := img.Slice(d.Offset, d.Length)
	if err != nil {
		return Table{}, lc.layoutError(img, "%s: %v", d.Name(), err)
	}

	t := Table{
		Descriptor: d,
		Rates:      append([]uint8(nil), raw[:l.rates]...),
		Slots:      make([]Slot, 0, l.slotCount()),
		raw:        raw,
	}
	for i, r := range t.Rates {
		if int(r) > l.maxRate {
			return Table{}, lc.layoutError(img, "%s rate %d is %d", d.Name(), i, r)
		}
	}
	for _, b := range l.blocks {
		for i := 0; i < b.slots; i++ {
			pos := b.start + i*2
			s := Slot{Rate: raw[b.rate], Level: raw[pos], Time: b.time}
			if s.Level != 0 || raw[pos+1] != 0 {
				if s.Level < minLevel || s.Level > maxLevel {
					return Table{}, lc.layoutError(img, "%s slot %d has level %d", d.Name(), len(t.Slots), s.Level)
				}
				if s.Species, err = species.FromROM(lc.gen, raw[pos+1]); err != nil {
					return Table{}, lc.layoutError(img, "%s slot %d: %v", d.Name(), len(t.Slots), err)
				}
			}
			t.Slots = append(t.Slots, s)
		}
	}
	return t, nil
}

// Encode copies the decoded span and overwrites the species byte of every
// slot that was not empty when decoded. Rates and levels always come from
// the decoded bytes.
func (lc layoutCodec) Encode(t Table) ([]byte, error) {
	l := t.layout
	if l == nil {
		return nil, fmt.Errorf("table %s was not decoded by the Generation %s codec", t.Name(), lc.gen)
	}

	if len(t.Slots) != l.slotCount() {
		return nil, &TableLengthMismatchError{Table: t.Name(), Want: t.Length, Got: l.rates + 2*len(t.Slots)}
	}
	if len(t.raw) != t.Length || l.length != t.Length {
		return nil, &TableLengthMismatchError{Table: t.Name(), Want: t.Length, Got: len(t.raw)}
	}

	out := make([]byte, len(t.raw))
	copy(out, t.raw)

	n := 0
	for _, b := range l.blocks {
		for i := 0; i < b.slots; i++ {
			pos := b.start + i*2
			if out[pos] != 0 || out[pos+1] != 0 {
				v, err := species.ToROM(lc.gen, t.Slots[n].Species)
				if err != nil {
					return nil, fmt.Errorf("%s slot %d: %w", t.Name(), n, err)
				}
				out[pos+1] = v
			}
			n++
		}
	}

	return out, nil
}

package randomizer

import (
	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/rom"
)

// Report is a read-only view of a cartridge and its encounter tables.
type Report struct {
	Info             game.Info              `json:"info"`
	Header           *rom.Header            `json:"header"`
	HeaderChecksumOK bool                   `json:"header_checksum_ok"`
	GlobalChecksumOK bool                   `json:"global_checksum_ok"`
	SHA256           string                 `json:"sha256"`
	Tables           []codec.Table          `json:"tables"`
	Slots            int                    `json:"slots"`
	EmptySlots       int                    `json:"empty_slots"`
	Categories       map[codec.Category]int `json:"categories"`
}

// Inspect detects and decodes img without changing it.
func Inspect(img *rom.Image) (*Report, error) {
	info, _, tables, err := decode(img)
	if err != nil {
		return nil, err
	}
	h, err := rom.ParseHeader(img)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Info:             info,
		Header:           h,
		HeaderChecksumOK: rom.HeaderChecksumOK(img),
		GlobalChecksumOK: rom.GlobalChecksumOK(img),
		SHA256:           img.SHA256(),
		Tables:           tables,
		Categories:       map[codec.Category]int{},
	}
	for _, t := range tables {
		r.Categories[t.Category]++
		for _, s := range t.Slots {
			r.Slots++
			if s.Empty() {
				r.EmptySlots++
			}
		}
	}
	return r, nil
}

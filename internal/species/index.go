package species

import (
	"fmt"

	"github.com/MJE43/gbwild/internal/game"
)

// gen1Index holds the Generation I internal index of each National Dex
// number, in dex order.
var gen1Index = [151]byte{
	0x99, 0x09, 0x9A, 0xB0, 0xB2, 0xB4, 0xB1, 0xB3, 0x1C, 0x7B,
	0x7C, 0x7D, 0x70, 0x71, 0x72, 0x24, 0x96, 0x97, 0xA5, 0xA6,
	0x05, 0x23, 0x6C, 0x2D, 0x54, 0x55, 0x60, 0x61, 0x0F, 0xA8,
	0x10, 0x03, 0xA7, 0x07, 0x04, 0x8E, 0x52, 0x53, 0x64, 0x65,
	0x6B, 0x82, 0xB9, 0xBA, 0xBB, 0x6D, 0x2E, 0x41, 0x77, 0x3B,
	0x76, 0x4D, 0x90, 0x2F, 0x80, 0x39, 0x75, 0x21, 0x14, 0x47,
	0x6E, 0x6F, 0x94, 0x26, 0x95, 0x6A, 0x29, 0x7E, 0xBC, 0xBD,
	0xBE, 0x18, 0x9B, 0xA9, 0x27, 0x31, 0xA3, 0xA4, 0x25, 0x08,
	0xAD, 0x36, 0x40, 0x46, 0x74, 0x3A, 0x78, 0x0D, 0x88, 0x17,
	0x8B, 0x19, 0x93, 0x0E, 0x22, 0x30, 0x81, 0x4E, 0x8A, 0x06,
	0x8D, 0x0C, 0x0A, 0x11, 0x91, 0x2B, 0x2C, 0x0B, 0x37, 0x8F,
	0x12, 0x01, 0x28, 0x1E, 0x02, 0x5C, 0x5D, 0x9D, 0x9E, 0x1B,
	0x98, 0x2A, 0x1A, 0x48, 0x35, 0x33, 0x1D, 0x3C, 0x85, 0x16,
	0x13, 0x4C, 0x66, 0x69, 0x68, 0x67, 0xAA, 0x62, 0x63, 0x5A,
	0x5B, 0xAB, 0x84, 0x4A, 0x4B, 0x49, 0x58, 0x59, 0x42, 0x83,
	0x15,
}

// gen1Dex is the inverse of gen1Index; zero marks an unused index.
var gen1Dex = func() (m [256]ID) {
	for i, b := range gen1Index {
		m[b] = ID(i + 1)
	}
	return m
}()

// ToROM returns the byte a generation's encounter data uses for species id.
// Generation II stores dex numbers directly.
func ToROM(g game.Generation, id ID) (byte, error) {
	c, err := For(g)
	if err != nil {
		return 0, err
	}
	if !c.Contains(int(id)) {
		return 0, &UnknownSpeciesError{Generation: g, Species: int(id)}
	}
	if g == game.GenerationI {
		return gen1Index[id-1], nil
	}
	return id, nil
}

// FromROM maps an encounter data byte back to its dex number.
func FromROM(g game.Generation, b byte) (ID, error) {
	switch g {
	case game.GenerationI:
		if id := gen1Dex[b]; id != 0 {
			return id, nil
		}
		return 0, fmt.Errorf("byte 0x%02X is not a Generation I species index", b)
	case game.GenerationII:
		return b, nil
	}
	return 0, fmt.Errorf("no species index for generation %s", g)
}

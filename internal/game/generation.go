// Package game identifies supported cartridges and their generation.
package game

import "fmt"

// Generation tags the cartridge family. It is fixed once detected.
type Generation int

const (
	GenerationI Generation = iota + 1
	GenerationII
)

// Generations lists every supported generation in order.
var Generations = []Generation{GenerationI, GenerationII}

func (g Generation) String() string {
	switch g {
	case GenerationI:
		return "I"
	case GenerationII:
		return "II"
	default:
		return fmt.Sprintf("Generation(%d)", int(g))
	}
}

// Number returns the generation as a plain integer (1 or 2).
func (g Generation) Number() int {
	return int(g)
}

// Valid reports whether g is a known generation.
func (g Generation) Valid() bool {
	return g == GenerationI || g == GenerationII
}

// ParseGeneration accepts "1", "2", "I", "II", "gen1" and "gen2".
func ParseGeneration(s string) (Generation, error) {
	switch s {
	case "1", "I", "i", "gen1":
		return GenerationI, nil
	case "2", "II", "ii", "gen2":
		return GenerationII, nil
	}
	return 0, fmt.Errorf("unknown generation %q", s)
}

// maxCartridgeSize is the largest dump each generation shipped on.
var maxCartridgeSize = map[Generation]int{
	GenerationI:  1 << 20,
	GenerationII: 2 << 20,
}

const minCartridgeSize = 32 * 1024

// SupportsSize reports whether n is an accepted cartridge size for g:
// a power-of-two multiple of 32 KiB up to the generation's largest cart.
func (g Generation) SupportsSize(n int) bool {
	max, ok := maxCartridgeSize[g]
	if !ok {
		return false
	}
	for size := minCartridgeSize; size <= max; size <<= 1 {
		if n == size {
			return true
		}
	}
	return false
}

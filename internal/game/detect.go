package game

import (
	"fmt"
	"strings"

	"github.com/MJE43/gbwild/internal/rom"
)

// Spec describes one supported cartridge title.
type Spec struct {
	Prefix     string     `json:"prefix"`
	Name       string     `json:"name"`
	Generation Generation `json:"generation"`
}

// Info is the result of detection.
type Info struct {
	Title      string     `json:"title"`
	Name       string     `json:"name"`
	Generation Generation `json:"generation"`
	Size       int        `json:"size"`
}

// registry is ordered so longer prefixes are tried before the shorter ones
// they contain ("POKEMON GREEN" before "POKEMON G").
var registry = []Spec{
	{"POKEMON RED", "Pokémon Red", GenerationI},
	{"POKEMON BLUE", "Pokémon Blue", GenerationI},
	{"POKEMON GREEN", "Pokémon Green", GenerationI},
	{"POKEMON YELLOW", "Pokémon Yellow", GenerationI},
	{"POKEMON_GLD", "Pokémon Gold", GenerationII},
	{"POKEMON_SLV", "Pokémon Silver", GenerationII},
	{"PM_CRYSTAL", "Pokémon Crystal", GenerationII},
	{"POKEMON BL", "Pokémon Blue", GenerationI},
	{"POKEMON Y", "Pokémon Yellow", GenerationI},
	{"POKEMON G", "Pokémon Gold", GenerationII},
	{"POKEMON S", "Pokémon Silver", GenerationII},
	{"POKEMON C", "Pokémon Crystal", GenerationII},
}

// ListGames returns the supported titles.
func ListGames() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Lookup matches a header title against the registry.
func Lookup(title string) (Spec, bool) {
	for _, s := range registry {
		if strings.HasPrefix(title, s.Prefix) {
			return s, true
		}
	}
	return Spec{}, false
}

// Detect classifies img by its header title and checks that its size is a
// cartridge size of the matched generation. It only reads the buffer.
func Detect(img *rom.Image) (Info, error) {
	if img.Len() < rom.HeaderEnd {
		return Info{}, &UnrecognizedRomError{
			Reason: "file is smaller than a Game Boy cartridge header",
			Size:   img.Len(),
		}
	}

	title := rom.Title(img.Bytes())
	spec, ok := Lookup(title)
	if !ok {
		return Info{}, &UnrecognizedRomError{
			Reason: "title matches no supported game",
			Title:  title,
			Size:   img.Len(),
		}
	}

	if !spec.Generation.SupportsSize(img.Len()) {
		return Info{}, &UnrecognizedRomError{
			Reason: fmt.Sprintf("size is not a Generation %s cartridge size", spec.Generation),
			Title:  title,
			Size:   img.Len(),
		}
	}

	return Info{
		Title:      title,
		Name:       spec.Name,
		Generation: spec.Generation,
		Size:       img.Len(),
	}, nil
}

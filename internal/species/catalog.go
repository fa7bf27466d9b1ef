// Package species holds the static per-generation species catalogs.
package species

import (
	"fmt"

	"github.com/MJE43/gbwild/internal/game"
)

// ID is a National Dex number. Generation I cartridges store a different
// internal index; see ToROM and FromROM.
type ID = uint8

// UnknownSpeciesError reports an identifier outside a generation's range.
type UnknownSpeciesError struct {
	Generation game.Generation
	Species    int
}

func (e *UnknownSpeciesError) Error() string {
	return fmt.Sprintf("species %d is not in the Generation %s catalog", e.Species, e.Generation)
}

// Catalog classifies species of one generation. It is immutable; every
// accessor returns a fresh copy.
type Catalog struct {
	generation   game.Generation
	max          int
	legendary    map[int]bool
	all          []ID
	nonLegendary []ID
}

var catalogs = map[game.Generation]*Catalog{
	game.GenerationI:  newCatalog(game.GenerationI, 151, 144, 145, 146, 150, 151),
	game.GenerationII: newCatalog(game.GenerationII, 251, 144, 145, 146, 150, 151, 243, 244, 245, 249, 250, 251),
}

func newCatalog(g game.Generation, max int, legendaries ...int) *Catalog {
	c := &Catalog{
		generation: g,
		max:        max,
		legendary:  make(map[int]bool, len(legendaries)),
	}
	for _, id := range legendaries {
		c.legendary[id] = true
	}
	for id := 1; id <= max; id++ {
		c.all = append(c.all, ID(id))
		if !c.legendary[id] {
			c.nonLegendary = append(c.nonLegendary, ID(id))
		}
	}
	return c
}

// For returns the catalog of generation g.
func For(g game.Generation) (*Catalog, error) {
	c, ok := catalogs[g]
	if !ok {
		return nil, fmt.Errorf("no species catalog for generation %s", g)
	}
	return c, nil
}

// Generation returns the catalog's generation.
func (c *Catalog) Generation() game.Generation {
	return c.generation
}

// Max returns the highest species identifier.
func (c *Catalog) Max() int {
	return c.max
}

// Contains reports whether id is a valid species for this generation.
func (c *Catalog) Contains(id int) bool {
	return id >= 1 && id <= c.max
}

// IsLegendary classifies id. Unknown identifiers are an error.
func (c *Catalog) IsLegendary(id int) (bool, error) {
	if !c.Contains(id) {
		return false, &UnknownSpeciesError{Generation: c.generation, Species: id}
	}
	return c.legendary[id], nil
}

// All returns every species identifier in ascending order.
func (c *Catalog) All() []ID {
	return clone(c.all)
}

// NonLegendary returns every non-legendary identifier in ascending order.
func (c *Catalog) NonLegendary() []ID {
	return clone(c.nonLegendary)
}

// Legendary returns the legendary identifiers in ascending order.
func (c *Catalog) Legendary() []ID {
	var out []ID
	for _, id := range c.all {
		if c.legendary[int(id)] {
			out = append(out, id)
		}
	}
	return out
}

// Eligible returns the draw pool for the given legendary policy.
func (c *Catalog) Eligible(allowLegendaries bool) []ID {
	if allowLegendaries {
		return c.All()
	}
	return c.NonLegendary()
}

// IsLegendary classifies id within generation g.
func IsLegendary(g game.Generation, id int) (bool, error) {
	c, err := For(g)
	if err != nil {
		return false, err
	}
	return c.IsLegendary(id)
}

// NonLegendarySpecies returns the non-legendary identifiers of g.
func NonLegendarySpecies(g game.Generation) ([]ID, error) {
	c, err := For(g)
	if err != nil {
		return nil, err
	}
	return c.NonLegendary(), nil
}

// AllSpecies returns every identifier of g.
func AllSpecies(g game.Generation) ([]ID, error) {
	c, err := For(g)
	if err != nil {
		return nil, err
	}
	return c.All(), nil
}

func clone(ids []ID) []ID {
	out := make([]ID, len(ids))
	copy(out, ids)
	return out
}

package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"strconv"
)

const roundSize = sha256.Size

// Generator produces a deterministic byte stream from a seed using
// HMAC-SHA256 rounds. It is not safe for concurrent use; every run builds
// its own.
type Generator struct {
	key    []byte
	stream string
	round  int
	cursor int
	buffer [roundSize]byte
}

// NewGenerator returns a generator keyed by the decimal seed value. Distinct
// stream names yield independent sequences from the same seed.
func NewGenerator(seed Seed, stream string) *Generator {
	return &Generator{
		key:    []byte(strconv.FormatUint(seed.Value(), 10)),
		stream: stream,
		cursor: roundSize,
		round:  -1,
	}
}

// Next returns the next byte.
func (g *Generator) Next() byte {
	if g.cursor >= roundSize {
		g.round++
		g.cursor = 0
		g.generateRound()
	}
	b := g.buffer[g.cursor]
	g.cursor++
	return b
}

func (g *Generator) generateRound() {
	h := hmac.New(sha256.New, g.key)
	fmt.Fprintf(h, "%s:%d", g.stream, g.round)
	copy(g.buffer[:], h.Sum(nil))
}

// Float returns a value in [0, 1) built from the next four bytes.
func (g *Generator) Float() float64 {
	b0 := g.Next()
	b1 := g.Next()
	b2 := g.Next()
	b3 := g.Next()
	return float64(b0)/256.0 +
		float64(b1)/(256.0*256.0) +
		float64(b2)/(256.0*256.0*256.0) +
		float64(b3)/(256.0*256.0*256.0*256.0)
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("engine: Intn called with non-positive n")
	}
	i := int(g.Float() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

package engine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Seed is a normalized 64-bit seed. The zero value is unset.
type Seed struct {
	input string
	value uint64
	set   bool
}

// ParseSeed normalizes user input. Decimal integers keep their numeric value
// (negative values wrap to 64 bits); any other text maps to the first eight
// bytes of its SHA-256 digest. Blank input yields an unset seed.
func ParseSeed(s string) Seed {
	in := strings.TrimSpace(s)
	if in == "" {
		return Seed{}
	}
	if v, err := strconv.ParseInt(in, 10, 64); err == nil {
		return Seed{input: in, value: uint64(v), set: true}
	}
	if v, err := strconv.ParseUint(strings.TrimPrefix(in, "+"), 10, 64); err == nil {
		return Seed{input: in, value: v, set: true}
	}
	sum := sha256.Sum256([]byte(in))
	return Seed{input: in, value: binary.BigEndian.Uint64(sum[:8]), set: true}
}

// IntSeed returns the seed for an integer value. IntSeed(n) equals
// ParseSeed of n's decimal form.
func IntSeed(v int64) Seed {
	return Seed{input: strconv.FormatInt(v, 10), value: uint64(v), set: true}
}

// IsSet reports whether the seed carries a value.
func (s Seed) IsSet() bool { return s.set }

// Value returns the normalized seed.
func (s Seed) Value() uint64 { return s.value }

// Input returns the text the seed was parsed from. It is empty for a
// generated seed.
func (s Seed) Input() string { return s.input }

// String returns the decimal normalized value, which parses back to the
// same seed.
func (s Seed) String() string {
	if !s.set {
		return "unset"
	}
	return strconv.FormatUint(s.value, 10)
}

// Equal compares normalized values.
func (s Seed) Equal(o Seed) bool {
	return s.set == o.set && s.value == o.value
}

// Resolve returns s when it is set, otherwise a fresh random seed with no
// input text.
func (s Seed) Resolve() (Seed, error) {
	if s.set {
		return s, nil
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Seed{}, fmt.Errorf("generate seed: %w", err)
	}
	v := binary.BigEndian.Uint64(b[:])
	return Seed{value: v, set: true}, nil
}

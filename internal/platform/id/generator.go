package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const maxExternalLength = 64

// Generator creates opaque request identifiers.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// ValidExternal reports whether a caller supplied id is short and plain enough to echo back in headers and logs.
func ValidExternal(raw string) bool {
	if raw == "" || len(raw) > maxExternalLength {
		return false
	}
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// Package id generates document identifiers.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomGenerator produces fixed-length lowercase alphanumeric identifiers.
type RandomGenerator struct {
	length int
}

func NewRandomGenerator(length int) *RandomGenerator {
	if length <= 0 {
		length = 20
	}
	return &RandomGenerator{length: length}
}

func (g *RandomGenerator) NewID() string {
	s, err := RandomString(g.length)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is unusable.
		panic(fmt.Sprintf("id: random source: %v", err))
	}
	return s
}

// RandomString returns n characters drawn uniformly from [a-z0-9].
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("id: length must be positive, got %d", n)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[v.Int64()]
	}
	return string(out), nil
}

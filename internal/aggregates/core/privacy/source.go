package privacy

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// SourceFactory hands out a fresh Source for each computation so no two
// computations share generator state.
type SourceFactory func() Source

// NewSeededSource returns a deterministic PCG source.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeededFactory returns sources that all start from the same seed. Tests only.
func SeededFactory(seed uint64) SourceFactory {
	return func() Source { return NewSeededSource(seed) }
}

// CryptoSeededFactory returns PCG sources seeded from crypto/rand.
func CryptoSeededFactory() SourceFactory {
	return func() Source {
		var b [16]byte
		// crypto/rand.Read never returns an error since Go 1.24.
		_, _ = crand.Read(b[:])
		return rand.New(rand.NewPCG(
			binary.LittleEndian.Uint64(b[:8]),
			binary.LittleEndian.Uint64(b[8:]),
		))
	}
}

package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a reproducible Source for replays and simulations.
// It is not safe for concurrent use.
type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source: two sources built from the
// same seed produce the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// SequenceSource replays a fixed list of die faces. Each call to Intn consumes
// the next face and returns face-1, clamped to [0, n). Once the list is
// exhausted the last face repeats.
type SequenceSource struct {
	faces []int
	next  int
}

// NewSequenceSource creates a SequenceSource over the given 1-based die faces.
//
// Precondition: len(faces) >= 1.
func NewSequenceSource(faces ...int) *SequenceSource {
	if len(faces) == 0 {
		panic("dice: NewSequenceSource precondition violated: at least one face required")
	}
	cp := make([]int, len(faces))
	copy(cp, faces)
	return &SequenceSource{faces: cp}
}

// Intn returns the next scripted face minus one, clamped into [0, n).
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	idx := s.next
	if idx >= len(s.faces) {
		idx = len(s.faces) - 1
	} else {
		s.next++
	}
	v := s.faces[idx] - 1
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	default:
		return v
	}
}

// Consumed reports how many scripted faces have been drawn.
func (s *SequenceSource) Consumed() int { return s.next }

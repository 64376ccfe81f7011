package sphere

import (
	"math/rand"
	"sync"
)

// Source is the randomness the builders draw from. Production code uses a
// seeded PRNG; tests substitute a scripted source.
type Source interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed.
func NewSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

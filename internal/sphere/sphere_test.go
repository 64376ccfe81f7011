package sphere

import (
	"github.com/lox/vibesphere/internal/catalog"
)

// scriptSource replays vals, reducing each into [0, n).
type scriptSource struct {
	vals []int
	i    int
}

func (s *scriptSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

// maxSource always returns n-1, which leaves a Fisher-Yates shuffle as the
// identity permutation.
type maxSource struct{}

func (maxSource) Intn(n int) int { return n - 1 }

func testIndex() *catalog.Index {
	return catalog.Default().Index()
}

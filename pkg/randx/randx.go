// Package randx provides a goroutine-safe, seedable random source shared by
// the simulation components (mock scoring, mock transcripts, question order).
package randx

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the subset of *rand.Rand the simulators need.
type Source interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Locked wraps a *rand.Rand with a mutex.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic source for seed.
func New(seed uint64) *Locked {
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded returns a source seeded from the wall clock.
func NewTimeSeeded() *Locked {
	return New(uint64(time.Now().UnixNano()))
}

// Float64 returns a value in [0,1).
func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// IntN returns a value in [0,n). It returns 0 for n <= 0.
func (l *Locked) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Shuffle pseudo-randomizes the order of n elements.
func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// Between returns a value in [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Fixed is a Source that always returns the same fraction; useful in tests.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

func (f Fixed) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(float64(f) * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Shuffle keeps the original order.
func (f Fixed) Shuffle(int, func(i, j int)) {}

// Duration returns a duration in [lo, hi). It returns 0 when hi <= 0 and lo
// when hi <= lo.
func Duration(src Source, lo, hi time.Duration) time.Duration {
	if hi <= 0 {
		return 0
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(src.Float64()*float64(hi-lo))
}

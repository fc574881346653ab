package epidemic

import (
	"math/rand"
	"time"
)

// Random is the source of every stochastic decision in a model.
// *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

// NewRandom returns a seeded source. A zero seed uses the clock.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Sample draws up to k distinct elements of items uniformly without replacement.
// If items has k elements or fewer, a copy of all of them is returned.
// The input slice is not modified.
func Sample(rng Random, items []int, k int) []int {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	pool := make([]int, len(items))
	copy(pool, items)
	if k >= len(pool) {
		return pool
	}
	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

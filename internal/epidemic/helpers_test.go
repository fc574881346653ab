package epidemic

import (
	"testing"
	"time"
)

// scriptedRandom replays fixed draws and fails the test on any unexpected one.
type scriptedRandom struct {
	t      *testing.T
	floats []float64
	ints   []int
}

func (s *scriptedRandom) Float64() float64 {
	s.t.Helper()
	if len(s.floats) == 0 {
		s.t.Fatal("unexpected Float64 draw")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRandom) Intn(n int) int {
	s.t.Helper()
	if len(s.ints) == 0 {
		s.t.Fatal("unexpected Intn draw")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRandom) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (s *scriptedRandom) drained() bool {
	return len(s.floats) == 0 && len(s.ints) == 0
}

// smallConfig is a 10x10 spatial config with a fixed seed.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Height = 10
	cfg.Width = 10
	cfg.RandomSeed = 42
	return cfg
}

func mustModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	m, err := NewModel(cfg)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func cellsIn(states ...State) []*Cell {
	out := make([]*Cell, len(states))
	for i, s := range states {
		out[i] = &Cell{ID: i, State: s}
	}
	return out
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

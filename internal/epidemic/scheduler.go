package epidemic

import (
	"fmt"
	"strings"
)

// Discipline selects how cells are activated within a step.
type Discipline string

const (
	// Simultaneous computes every cell from the previous step's states and
	// only then commits.
	Simultaneous Discipline = "simultaneous"
	// RandomActivation visits cells in a fresh random order and commits each
	// one immediately, so later cells see earlier updates.
	RandomActivation Discipline = "random"
)

// ParseDiscipline accepts a discipline name case-insensitively.
func ParseDiscipline(name string) (Discipline, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(Simultaneous), "synchronous":
		return Simultaneous, nil
	case string(RandomActivation), "sequential":
		return RandomActivation, nil
	default:
		return "", fmt.Errorf("unknown schedule %q", name)
	}
}

// Scheduler activates every cell once per step.
type Scheduler interface {
	Discipline() Discipline
	// Order returns the visit order for a step over n cells.
	Order(n int, rng Random) []int
	// Activate runs compute for each cell in order and commits the results.
	Activate(cells []*Cell, order []int, compute func(*Cell))
}

// NewScheduler returns the scheduler for d.
func NewScheduler(d Discipline) (Scheduler, error) {
	switch d {
	case Simultaneous:
		return simultaneousScheduler{}, nil
	case RandomActivation:
		return randomScheduler{}, nil
	default:
		return nil, fmt.Errorf("unknown schedule %q", d)
	}
}

type simultaneousScheduler struct{}

func (simultaneousScheduler) Discipline() Discipline { return Simultaneous }

func (simultaneousScheduler) Order(n int, _ Random) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func (simultaneousScheduler) Activate(cells []*Cell, order []int, compute func(*Cell)) {
	for _, i := range order {
		compute(cells[i])
	}
	// barrier: nothing is committed until every cell has computed
	for _, i := range order {
		cells[i].commit()
	}
}

type randomScheduler struct{}

func (randomScheduler) Discipline() Discipline { return RandomActivation }

func (randomScheduler) Order(n int, rng Random) []int {
	return rng.Perm(n)
}

func (randomScheduler) Activate(cells []*Cell, order []int, compute func(*Cell)) {
	for _, i := range order {
		compute(cells[i])
		cells[i].commit()
	}
}

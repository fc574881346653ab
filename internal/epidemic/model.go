package epidemic

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Model is a single epidemic run: a lattice of cells, its contact groups,
// a scheduler and the time series collected so far.
type Model struct {
	mu        sync.RWMutex
	id        string
	cfg       Config
	placement Placement
	lattice   *Lattice
	groups    *ContactGroups
	scheduler Scheduler
	rng       Random
	step      int
	series    *TimeSeries
	logger    Logger

	notifier    *NotificationManager
	notifierIDs []string

	stopCh    chan struct{}
	isRunning bool
}

// NewModel builds a model from cfg, seeded by cfg.RandomSeed.
func NewModel(cfg Config) (*Model, error) {
	return NewModelWithRandom(cfg, NewRandom(cfg.RandomSeed))
}

// NewModelWithRandom builds a model drawing every random decision from rng,
// including the initial seeding.
func NewModelWithRandom(cfg Config, rng Random) (*Model, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	discipline, err := ParseDiscipline(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	scheduler, err := NewScheduler(discipline)
	if err != nil {
		return nil, err
	}
	placement, _ := parsePlacement(cfg.Placement)

	m := &Model{
		id:        uuid.NewString(),
		cfg:       cfg,
		placement: placement,
		lattice:   NewLattice(cfg.Height, cfg.Width, cfg.params()),
		groups:    NewContactGroups(cfg.GroupSize, cfg.QuarantineDelay, cfg.GroupSwitch, cfg.SwitchPeriod),
		scheduler: scheduler,
		rng:       rng,
		series:    NewTimeSeries(),
		logger:    NewNoOpLogger(),
		stopCh:    make(chan struct{}),
	}
	if cfg.Spatial {
		for _, c := range m.lattice.Cells() {
			c.spatial = m.lattice.Neighborhood(c.Pos, cfg.Radius)
		}
	}
	m.seed()
	m.collect()
	return m, nil
}

// SetLogger replaces the model logger. nil restores the no-op logger.
func (m *Model) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if logger == nil {
		logger = NewNoOpLogger()
	}
	m.logger = logger
}

// SetNotificationManager publishes every subsequent row to the given
// notifiers through mgr.
func (m *Model) SetNotificationManager(mgr *NotificationManager, notifierIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = mgr
	m.notifierIDs = append([]string(nil), notifierIDs...)
}

// ID is the run id, unique per model.
func (m *Model) ID() string { return m.id }

// Config returns the construction parameters.
func (m *Model) Config() Config { return m.cfg }

// Discipline returns the update discipline.
func (m *Model) Discipline() Discipline { return m.scheduler.Discipline() }

// StepCount is the number of steps run since construction or the last reset.
func (m *Model) StepCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.step
}

// Series returns a copy of the time series, starting with the initial row.
func (m *Model) Series() []Row {
	return m.series.Rows()
}

// Counts tallies the current states.
func (m *Model) Counts() Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Tally(m.lattice.Cells())
}

// States returns the committed state of every cell in id order.
func (m *Model) States() []State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cells := m.lattice.Cells()
	out := make([]State, len(cells))
	for i, c := range cells {
		out[i] = c.State
	}
	return out
}

// Group returns the contact group currently assigned to cell id.
func (m *Model) Group(id int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups.Group(id)
}

// Step advances every cell by one step and appends a row to the series.
func (m *Model) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepLocked()
}

// RunSteps runs n steps back to back.
func (m *Model) RunSteps(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for range n {
		m.stepLocked()
	}
}

func (m *Model) stepLocked() {
	step := m.step
	if m.groups.BeginStep(step) && step > 0 {
		m.logger.Debugf("contact groups cleared: run_id=%s step=%d", m.id, step)
	}

	cells := m.lattice.Cells()
	order := m.scheduler.Order(len(cells), m.rng)
	m.prepare(order, step)
	m.scheduler.Activate(cells, order, func(c *Cell) {
		c.compute(m.rng)
	})

	m.step++
	m.collect()
}

// prepare refreshes neighborhoods and contact groups for every cell before
// any transition is computed.
func (m *Model) prepare(order []int, step int) {
	cells := m.lattice.Cells()
	for _, i := range order {
		c := cells[i]
		if m.cfg.Spatial {
			c.neighbors = c.spatial
		} else {
			c.neighbors = m.meanField(c)
		}
	}

	if m.groups.AssignmentStep(step) {
		added := 0
		for _, i := range order {
			c := cells[i]
			if m.cfg.Spatial {
				ids := make([]int, len(c.neighbors))
				for j, n := range c.neighbors {
					ids[j] = n.ID
				}
				added += m.groups.Ensure(c.ID, ids, step, m.rng)
			} else {
				added += m.groups.EnsureFromPopulation(c.ID, len(cells), step, m.rng)
			}
		}
		m.logger.Debugf("contact groups assigned: run_id=%s step=%d links=%d", m.id, step, added)
	}

	active := m.groups.Active(step)
	for _, i := range order {
		c := cells[i]
		c.contacts = c.neighbors
		if !active {
			continue
		}
		if group := m.groups.Group(c.ID); len(group) > 0 {
			contacts := make([]*Cell, len(group))
			for j, id := range group {
				contacts[j] = cells[id]
			}
			c.contacts = contacts
		}
	}
}

// meanField samples the neighborhood of c from the whole population.
func (m *Model) meanField(c *Cell) []*Cell {
	cells := m.lattice.Cells()
	n := len(cells)
	k := min(m.cfg.GroupSize, n-1)
	out := make([]*Cell, 0, k)
	if 2*k > n {
		others := make([]int, 0, n-1)
		for _, other := range cells {
			if other.ID != c.ID {
				others = append(others, other.ID)
			}
		}
		for _, id := range Sample(m.rng, others, k) {
			out = append(out, cells[id])
		}
		return out
	}
	seen := make(map[int]struct{}, k)
	for len(out) < k {
		id := m.rng.Intn(n)
		if id == c.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, cells[id])
	}
	return out
}

// seed puts every cell back to susceptible and infects the initial set.
func (m *Model) seed() {
	for _, c := range m.lattice.Cells() {
		c.State = Susceptible
		c.next = Susceptible
		c.neighbors = nil
		c.contacts = nil
	}
	switch m.placement {
	case PlacementBlock:
		h, w := m.cfg.Height, m.cfg.Width
		for _, dr := range []int{0, 1} {
			for _, dc := range []int{0, 1} {
				m.infect(m.lattice.At(Coord{Row: h/2 + dr, Col: w/2 + dc}))
			}
		}
	case PlacementRandom:
		for _, c := range m.lattice.Cells() {
			if m.rng.Float64() < m.cfg.Density {
				m.infect(c)
			}
		}
	case PlacementExplicit:
		for _, s := range m.cfg.Seeds {
			m.infect(m.lattice.At(s))
		}
	}
}

func (m *Model) infect(c *Cell) {
	c.State = Infectious
	c.next = Infectious
}

func (m *Model) collect() {
	row := NewRow(m.step, Tally(m.lattice.Cells()))
	m.series.Collect(row)
	if m.notifier != nil {
		m.notifier.Enqueue(NewStepEvent(m.id, row), m.notifierIDs)
	}
}

// Reset restores the initial configuration: fresh seeding, empty contact
// groups, step counter 0 and a series holding only the initial row.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups.ResetAll()
	m.step = 0
	m.series.reset()
	m.seed()
	m.collect()
	m.logger.Infof("model reset: run_id=%s", m.id)
}

// DefaultRunInterval paces Run when it is given a non-positive interval.
const DefaultRunInterval = 100 * time.Millisecond

// Run starts stepping in a goroutine once per interval until Stop is
// called. It can be called again after stopping. An interval of zero or
// less runs at DefaultRunInterval.
func (m *Model) Run(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRunInterval
	}
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.stopCh = make(chan struct{})
	m.isRunning = true
	stopCh := m.stopCh
	m.logger.Infof("model running: run_id=%s interval=%s", m.id, interval)
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Step()
			case <-stopCh:
				m.mu.Lock()
				m.isRunning = false
				m.logger.Infof("model stopped: run_id=%s step=%d", m.id, m.step)
				m.mu.Unlock()
				return
			}
		}
	}()
}

// Stop ends a background Run.
func (m *Model) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isRunning {
		return
	}
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

// IsRunning reports whether a background Run is active.
func (m *Model) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

package epidemic

import "sync"

// Counts is the number of cells per state.
type Counts struct {
	Susceptible int `json:"susceptible"`
	Infectious  int `json:"infectious"`
	Removed     int `json:"removed"`
	Exposed     int `json:"exposed"`
}

// Total is the number of cells counted.
func (c Counts) Total() int {
	return c.Susceptible + c.Infectious + c.Removed + c.Exposed
}

// Tally counts cells by committed state.
func Tally(cells []*Cell) Counts {
	var c Counts
	for _, cell := range cells {
		switch cell.State {
		case Susceptible:
			c.Susceptible++
		case Infectious:
			c.Infectious++
		case Removed:
			c.Removed++
		case PendingSusceptible:
			c.Exposed++
		}
	}
	return c
}

// Row is one entry of the time series.
type Row struct {
	Step        int     `json:"step"`
	Susceptible float64 `json:"susceptible"`
	Infectious  float64 `json:"infectious"`
	Removed     float64 `json:"removed"`
	Exposed     float64 `json:"exposed"`
	Counts      Counts  `json:"counts"`
}

// NewRow converts counts into fractions of their total.
func NewRow(step int, c Counts) Row {
	total := float64(c.Total())
	if total == 0 {
		return Row{Step: step, Counts: c}
	}
	return Row{
		Step:        step,
		Susceptible: float64(c.Susceptible) / total,
		Infectious:  float64(c.Infectious) / total,
		Removed:     float64(c.Removed) / total,
		Exposed:     float64(c.Exposed) / total,
		Counts:      c,
	}
}

// TimeSeries is an append-only, concurrency-safe list of rows.
type TimeSeries struct {
	mu   sync.RWMutex
	rows []Row
}

func NewTimeSeries() *TimeSeries {
	return &TimeSeries{rows: make([]Row, 0, 64)}
}

func (ts *TimeSeries) Collect(r Row) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.rows = append(ts.rows, r)
}

// Rows returns a copy of every row collected so far.
func (ts *TimeSeries) Rows() []Row {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]Row, len(ts.rows))
	copy(out, ts.rows)
	return out
}

func (ts *TimeSeries) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.rows)
}

// Last returns the latest row, if any.
func (ts *TimeSeries) Last() (Row, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if len(ts.rows) == 0 {
		return Row{}, false
	}
	return ts.rows[len(ts.rows)-1], true
}

func (ts *TimeSeries) reset() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.rows = ts.rows[:0]
}

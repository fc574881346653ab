package epidemic

// Params are the per-cell parameters, fixed at creation.
type Params struct {
	InfectProb  float64
	RemovalProb float64
	GroupSize   int
}

// Cell is a single individual fixed at a lattice position.
type Cell struct {
	ID     int
	Pos    Coord
	State  State
	Params Params

	next State
	// spatial is the precomputed Moore neighborhood.
	spatial []*Cell
	// neighbors and contacts are refreshed every step.
	neighbors []*Cell
	contacts  []*Cell
}

func newCell(id int, pos Coord, params Params) *Cell {
	return &Cell{
		ID:     id,
		Pos:    pos,
		State:  Susceptible,
		Params: params,
		next:   Susceptible,
	}
}

// Pending returns the next state computed in the last compute phase.
func (c *Cell) Pending() State { return c.next }

// Neighbors returns the neighborhood considered in the current step.
func (c *Cell) Neighbors() []*Cell { return c.neighbors }

// Contacts returns the cells sampled from in the current step: the contact
// group when one is assigned, otherwise the neighborhood.
func (c *Cell) Contacts() []*Cell { return c.contacts }

// compute stores the next state without changing the visible one.
func (c *Cell) compute(rng Random) {
	c.next = Transition(c.State, c.contacts, c.Params, rng)
}

func (c *Cell) commit() {
	c.State = c.next
}

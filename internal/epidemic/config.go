package epidemic

import "strings"

// Placement selects how the initial infectious cells are chosen.
type Placement string

const (
	// PlacementBlock seeds the central 2x2 block.
	PlacementBlock Placement = "block"
	// PlacementRandom seeds each cell independently with probability Density.
	PlacementRandom Placement = "random"
	// PlacementExplicit seeds exactly the cells listed in Seeds.
	PlacementExplicit Placement = "explicit"
)

// Config holds every construction parameter of a model. It is constant for
// the run.
type Config struct {
	Height int `json:"height" yaml:"height"`
	Width  int `json:"width" yaml:"width"`
	// Radius of the Moore neighborhood.
	Radius   int    `json:"radius" yaml:"radius"`
	Schedule string `json:"schedule" yaml:"schedule"`

	Placement string  `json:"placement" yaml:"placement"`
	Density   float64 `json:"density" yaml:"density"`
	Seeds     []Coord `json:"seeds,omitempty" yaml:"seeds,omitempty"`

	InfectProb  float64 `json:"p_infect" yaml:"p_infect"`
	RemovalProb float64 `json:"p_removal" yaml:"p_removal"`

	// Spatial selects lattice neighborhoods; false samples contacts from the
	// whole population (mean field).
	Spatial         bool `json:"spatial" yaml:"spatial"`
	GroupSize       int  `json:"group_size" yaml:"group_size"`
	QuarantineDelay int  `json:"quarantine_delay" yaml:"quarantine_delay"`
	GroupSwitch     bool `json:"group_switch" yaml:"group_switch"`
	SwitchPeriod    int  `json:"switch_period" yaml:"switch_period"`

	// RandomSeed seeds the model's random source; 0 seeds from the clock.
	RandomSeed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the reference parameter set.
func DefaultConfig() Config {
	return Config{
		Height:          100,
		Width:           100,
		Radius:          2,
		Schedule:        string(Simultaneous),
		Placement:       string(PlacementBlock),
		Density:         0.1,
		InfectProb:      0.25,
		RemovalProb:     0.0,
		Spatial:         true,
		GroupSize:       4,
		QuarantineDelay: 7,
		GroupSwitch:     true,
		SwitchPeriod:    2,
	}
}

// Population is the number of cells.
func (c Config) Population() int {
	return c.Height * c.Width
}

func (c Config) params() Params {
	return Params{
		InfectProb:  c.InfectProb,
		RemovalProb: c.RemovalProb,
		GroupSize:   c.GroupSize,
	}
}

func parsePlacement(name string) (Placement, bool) {
	switch p := Placement(strings.ToLower(strings.TrimSpace(name))); p {
	case PlacementBlock, PlacementRandom, PlacementExplicit:
		return p, true
	}
	return "", false
}

package epidemic

import "fmt"

// State is the epidemiological state of a cell.
type State uint8

const (
	Susceptible State = iota
	Infectious
	Removed
	// PendingSusceptible marks a cell that had an infectious contact this step.
	// It resolves back to Susceptible on the cell's next update unless infected.
	PendingSusceptible
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infectious:
		return "infectious"
	case Removed:
		return "removed"
	case PendingSusceptible:
		return "exposed"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four known states.
func (s State) Valid() bool {
	return s <= PendingSusceptible
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid state %d", s)
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "susceptible":
		*s = Susceptible
	case "infectious":
		*s = Infectious
	case "removed":
		*s = Removed
	case "exposed":
		*s = PendingSusceptible
	default:
		return fmt.Errorf("unknown state %q", string(b))
	}
	return nil
}

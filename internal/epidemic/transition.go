package epidemic

// Transition returns the next state of a cell in state current whose
// contacts for this step are given. It consumes draws from rng in a fixed
// order: contact index, then infection, or, for infectious cells, removal.
func Transition(current State, contacts []*Cell, p Params, rng Random) State {
	if current == PendingSusceptible {
		current = Susceptible
	}
	next := current

	switch current {
	case Susceptible:
		for _, c := range contacts {
			if c.State == Infectious {
				next = PendingSusceptible
				break
			}
		}
		if len(contacts) == 0 {
			return next
		}
		picked := contacts[rng.Intn(len(contacts))]
		if picked.State == Infectious && rng.Float64() < p.InfectProb {
			next = Infectious
		}
	case Infectious:
		if rng.Float64() < p.RemovalProb {
			next = Removed
		}
	}
	return next
}

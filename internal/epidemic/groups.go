package epidemic

// ContactGroups keeps the regular contacts of every cell once the
// quarantine policy is active. Groups are symmetric: when a selects b,
// b's group records a too, so no id sits in more than size groups.
type ContactGroups struct {
	size   int
	delay  int
	rotate bool
	period int
	groups map[int][]int
}

// NewContactGroups creates an empty manager. period must be at least 1.
func NewContactGroups(size, delay int, rotate bool, period int) *ContactGroups {
	if period < 1 {
		period = 1
	}
	return &ContactGroups{
		size:   size,
		delay:  delay,
		rotate: rotate,
		period: period,
		groups: make(map[int][]int),
	}
}

// Active reports whether cells use their contact group at step.
func (g *ContactGroups) Active(step int) bool {
	return step >= g.delay
}

// AssignmentStep reports whether groups are (re)filled at step.
func (g *ContactGroups) AssignmentStep(step int) bool {
	if step < g.delay || (step-g.delay)%g.period != 0 {
		return false
	}
	return g.rotate || step == g.delay
}

// BeginStep clears the mapping at step 0 and, with rotation enabled, at
// the start of every assignment period. It reports whether it cleared.
func (g *ContactGroups) BeginStep(step int) bool {
	if step == 0 || (g.rotate && g.AssignmentStep(step)) {
		g.ResetAll()
		return true
	}
	return false
}

// ResetAll drops every assignment.
func (g *ContactGroups) ResetAll() {
	clear(g.groups)
}

// Group returns a copy of the contacts assigned to id.
func (g *ContactGroups) Group(id int) []int {
	members := g.groups[id]
	if len(members) == 0 {
		return nil
	}
	out := make([]int, len(members))
	copy(out, members)
	return out
}

// Len returns the number of contacts assigned to id.
func (g *ContactGroups) Len(id int) int {
	return len(g.groups[id])
}

// Assigned returns the number of cells with a non-empty group.
func (g *ContactGroups) Assigned() int {
	n := 0
	for _, members := range g.groups {
		if len(members) > 0 {
			n++
		}
	}
	return n
}

// Ensure tops up the group of id on an assignment step, drawing from
// candidates without replacement. It returns how many contacts were added.
// A pool with no eligible candidates leaves the group short.
func (g *ContactGroups) Ensure(id int, candidates []int, step int, rng Random) int {
	if !g.AssignmentStep(step) {
		return 0
	}
	need := g.size - len(g.groups[id])
	if need <= 0 {
		return 0
	}
	pool := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if g.eligible(id, c) {
			pool = append(pool, c)
		}
	}
	picked := Sample(rng, pool, need)
	for _, c := range picked {
		g.link(id, c)
	}
	return len(picked)
}

// EnsureFromPopulation behaves like Ensure with every id in [0, n) as a
// candidate, without materializing the pool unless rejection sampling
// keeps missing.
func (g *ContactGroups) EnsureFromPopulation(id, n, step int, rng Random) int {
	if !g.AssignmentStep(step) {
		return 0
	}
	need := g.size - len(g.groups[id])
	if need <= 0 {
		return 0
	}
	added := 0
	for attempts := 4 * n; added < need && attempts > 0; attempts-- {
		c := rng.Intn(n)
		if g.eligible(id, c) {
			g.link(id, c)
			added++
		}
	}
	if added < need {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		added += g.Ensure(id, all, step, rng)
	}
	return added
}

func (g *ContactGroups) eligible(id, c int) bool {
	if c == id || len(g.groups[c]) >= g.size {
		return false
	}
	for _, m := range g.groups[id] {
		if m == c {
			return false
		}
	}
	return true
}

func (g *ContactGroups) link(a, b int) {
	g.groups[a] = append(g.groups[a], b)
	g.groups[b] = append(g.groups[b], a)
}

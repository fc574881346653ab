package epidemic

import "testing"

func TestContactGroups_AssignmentStep(t *testing.T) {
	rotating := NewContactGroups(3, 3, true, 2)
	fixed := NewContactGroups(3, 3, false, 2)

	for step := 0; step <= 9; step++ {
		wantRotating := step == 3 || step == 5 || step == 7 || step == 9
		if got := rotating.AssignmentStep(step); got != wantRotating {
			t.Errorf("rotating step %d: got %v, want %v", step, got, wantRotating)
		}
		if got := fixed.AssignmentStep(step); got != (step == 3) {
			t.Errorf("fixed step %d: got %v, want %v", step, got, step == 3)
		}
		if got := fixed.Active(step); got != (step >= 3) {
			t.Errorf("step %d: Active = %v", step, got)
		}
	}
}

func TestContactGroups_BeginStepClears(t *testing.T) {
	g := NewContactGroups(2, 1, true, 2)
	g.link(0, 1)

	if g.BeginStep(2) {
		t.Error("step 2 is not an assignment step and must not clear")
	}
	if g.Len(0) != 1 {
		t.Fatal("group cleared unexpectedly")
	}
	if !g.BeginStep(3) {
		t.Error("step 3 starts a rotation period and must clear")
	}
	if g.Len(0) != 0 || g.Len(1) != 0 {
		t.Error("expected empty groups after rotation")
	}

	g.link(0, 1)
	if !g.BeginStep(0) {
		t.Error("step 0 must clear")
	}
	if g.Assigned() != 0 {
		t.Error("expected no assignments after step 0")
	}

	fixed := NewContactGroups(2, 1, false, 2)
	fixed.link(0, 1)
	if fixed.BeginStep(3) {
		t.Error("groups without rotation are only cleared at step 0")
	}
}

func TestContactGroups_EnsureCapacity(t *testing.T) {
	const size = 3
	l := NewLattice(10, 10, Params{})
	g := NewContactGroups(size, 0, true, 1)
	rng := NewRandom(7)

	for _, c := range l.Cells() {
		ids := []int{}
		for _, n := range l.Neighborhood(c.Pos, 2) {
			ids = append(ids, n.ID)
		}
		g.Ensure(c.ID, ids, 0, rng)
	}

	checkGroups(t, g, l.Len(), size)
	if g.Assigned() == 0 {
		t.Fatal("expected some groups to be assigned")
	}
}

func TestContactGroups_EnsureFromPopulation(t *testing.T) {
	const size, n = 4, 50
	g := NewContactGroups(size, 0, false, 1)
	rng := NewRandom(3)
	for id := 0; id < n; id++ {
		g.EnsureFromPopulation(id, n, 0, rng)
	}
	checkGroups(t, g, n, size)
}

func TestContactGroups_EnsureEmptyPool(t *testing.T) {
	g := NewContactGroups(1, 0, false, 1)
	g.link(1, 2) // both full

	if added := g.Ensure(0, []int{1, 2}, 0, NewRandom(1)); added != 0 {
		t.Fatalf("expected nothing added from a full pool, got %d", added)
	}
	if g.Len(0) != 0 {
		t.Errorf("expected empty group, got %v", g.Group(0))
	}
}

func TestContactGroups_EnsureOnlyOnAssignmentSteps(t *testing.T) {
	g := NewContactGroups(2, 5, false, 1)
	if added := g.Ensure(0, []int{1, 2, 3}, 4, NewRandom(1)); added != 0 {
		t.Fatalf("expected no assignment before the delay, got %d", added)
	}
	if added := g.Ensure(0, []int{1, 2, 3}, 6, NewRandom(1)); added != 0 {
		t.Fatalf("expected no assignment after the first period without rotation, got %d", added)
	}
	if added := g.Ensure(0, []int{1, 2, 3}, 5, NewRandom(1)); added != 2 {
		t.Fatalf("expected 2 contacts at the delay step, got %d", added)
	}
	// already full
	if added := g.Ensure(0, []int{1, 2, 3}, 5, NewRandom(1)); added != 0 {
		t.Fatalf("expected full group to stay, got %d added", added)
	}
}

func TestContactGroups_ResetAll(t *testing.T) {
	g := NewContactGroups(2, 0, false, 1)
	g.Ensure(0, []int{1, 2, 3}, 0, NewRandom(1))
	if g.Len(0) == 0 {
		t.Fatal("expected an assignment")
	}
	g.ResetAll()
	for id := 0; id < 4; id++ {
		if grp := g.Group(id); grp != nil {
			t.Errorf("expected no group for %d after reset, got %v", id, grp)
		}
	}
}

func TestContactGroups_GroupIsACopy(t *testing.T) {
	g := NewContactGroups(2, 0, false, 1)
	g.link(0, 1)
	grp := g.Group(0)
	grp[0] = 99
	if g.Group(0)[0] != 1 {
		t.Error("mutating the returned group changed the manager")
	}
}

func TestSample(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	got := Sample(NewRandom(9), items, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %v", got)
	}
	seen := map[int]bool{}
	for _, v := range got {
		if v < 1 || v > 5 || seen[v] {
			t.Fatalf("bad sample %v", got)
		}
		seen[v] = true
	}
	if items[0] != 1 || items[4] != 5 {
		t.Error("Sample modified its input")
	}
	if all := Sample(NewRandom(9), items, 10); len(all) != 5 {
		t.Errorf("expected the whole pool, got %v", all)
	}
	if none := Sample(NewRandom(9), items, 0); none != nil {
		t.Errorf("expected nil for k=0, got %v", none)
	}
}

// checkGroups asserts groups are symmetric, free of self-links and
// duplicates, and bounded by size.
func checkGroups(t *testing.T, g *ContactGroups, n, size int) {
	t.Helper()
	for id := 0; id < n; id++ {
		grp := g.Group(id)
		if len(grp) > size {
			t.Fatalf("cell %d has %d contacts, capacity is %d", id, len(grp), size)
		}
		seen := map[int]bool{}
		for _, c := range grp {
			if c == id {
				t.Fatalf("cell %d lists itself", id)
			}
			if seen[c] {
				t.Fatalf("cell %d lists %d twice", id, c)
			}
			seen[c] = true
			back := false
			for _, b := range g.Group(c) {
				if b == id {
					back = true
				}
			}
			if !back {
				t.Fatalf("cell %d lists %d but not the other way round", id, c)
			}
		}
	}
}

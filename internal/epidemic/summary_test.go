package epidemic

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	rows := []Row{
		NewRow(0, Counts{Susceptible: 9, Infectious: 1}),
		NewRow(1, Counts{Susceptible: 5, Infectious: 3, Exposed: 2}),
		NewRow(2, Counts{Susceptible: 4, Infectious: 4, Removed: 2}),
		NewRow(3, Counts{Susceptible: 4, Infectious: 1, Removed: 5}),
	}
	s := Summarize(rows)

	if s.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", s.Steps)
	}
	if s.PeakStep != 2 || s.PeakInfectious != 0.4 {
		t.Errorf("unexpected peak %v at %d", s.PeakInfectious, s.PeakStep)
	}
	if s.FinalInfectious != 0.1 || s.FinalRemoved != 0.5 {
		t.Errorf("unexpected final figures %+v", s)
	}
	if math.Abs(s.AttackRate-0.6) > 1e-12 {
		t.Errorf("expected attack rate 0.6, got %v", s.AttackRate)
	}
	if math.Abs(s.MeanExposed-0.05) > 1e-12 {
		t.Errorf("expected mean exposed 0.05, got %v", s.MeanExposed)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestSummarize_ModelRun(t *testing.T) {
	cfg := smallConfig()
	cfg.RemovalProb = 0.2
	m := mustModel(t, cfg)
	m.RunSteps(20)

	s := Summarize(m.Series())
	if s.Steps != 20 {
		t.Errorf("expected 20 steps, got %d", s.Steps)
	}
	if s.PeakInfectious < 0.04 {
		t.Errorf("peak %v below the initial infectious fraction", s.PeakInfectious)
	}
	if s.AttackRate < s.FinalRemoved || s.AttackRate > 1 {
		t.Errorf("attack rate %v out of range", s.AttackRate)
	}
}

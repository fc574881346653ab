package epidemic

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses a time series.
type Summary struct {
	Steps           int     `json:"steps"`
	PeakInfectious  float64 `json:"peak_infectious"`
	PeakStep        int     `json:"peak_step"`
	FinalInfectious float64 `json:"final_infectious"`
	FinalRemoved    float64 `json:"final_removed"`
	// AttackRate is the fraction ever infected by the last row.
	AttackRate  float64 `json:"attack_rate"`
	MeanExposed float64 `json:"mean_exposed"`
}

// Summarize computes peak and final figures of rows. Rows are expected in
// step order, as produced by a model.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	infectious := make([]float64, len(rows))
	exposed := make([]float64, len(rows))
	for i, r := range rows {
		infectious[i] = r.Infectious
		exposed[i] = r.Exposed
	}
	peak := floats.MaxIdx(infectious)
	last := rows[len(rows)-1]
	return Summary{
		Steps:           last.Step,
		PeakInfectious:  infectious[peak],
		PeakStep:        rows[peak].Step,
		FinalInfectious: last.Infectious,
		FinalRemoved:    last.Removed,
		AttackRate:      last.Infectious + last.Removed,
		MeanExposed:     stat.Mean(exposed, nil),
	}
}

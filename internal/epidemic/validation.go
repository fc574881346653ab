package epidemic

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid config: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "config validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, v ...any) {
	e.Add(fmt.Sprintf(format, v...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateConfig rejects configurations that cannot run.
func ValidateConfig(cfg Config) error {
	err := &ValidationError{}

	if cfg.Height <= 0 {
		err.Addf("height must be positive, got %d", cfg.Height)
	}
	if cfg.Width <= 0 {
		err.Addf("width must be positive, got %d", cfg.Width)
	}
	population := cfg.Population()
	if cfg.Height > 0 && cfg.Width > 0 && population < 2 {
		err.Add("lattice must hold at least 2 cells")
	}
	if cfg.Radius < 1 {
		err.Addf("radius must be at least 1, got %d", cfg.Radius)
	}

	if _, perr := ParseDiscipline(cfg.Schedule); perr != nil {
		err.Add(perr.Error())
	}

	placement, ok := parsePlacement(cfg.Placement)
	if !ok {
		err.Addf("unknown placement %q", cfg.Placement)
	}
	checkProbability(err, "density", cfg.Density)
	if placement == PlacementExplicit {
		for i, s := range cfg.Seeds {
			if s.Row < 0 || s.Row >= cfg.Height || s.Col < 0 || s.Col >= cfg.Width {
				err.Addf("seed at index %d (%d,%d) is outside the lattice", i, s.Row, s.Col)
			}
		}
	}

	checkProbability(err, "p_infect", cfg.InfectProb)
	checkProbability(err, "p_removal", cfg.RemovalProb)

	if cfg.GroupSize < 0 {
		err.Addf("group_size must not be negative, got %d", cfg.GroupSize)
	} else if population > 0 && cfg.GroupSize > population {
		// a group holds at most population-1 others; larger sizes only leave groups short
		err.Addf("group_size %d exceeds the population %d", cfg.GroupSize, population)
	}
	if !cfg.Spatial && cfg.GroupSize == 0 {
		err.Add("group_size must be at least 1 in mean-field mode")
	}
	if cfg.QuarantineDelay < 0 {
		err.Addf("quarantine_delay must not be negative, got %d", cfg.QuarantineDelay)
	}
	if cfg.SwitchPeriod < 1 {
		err.Addf("switch_period must be at least 1, got %d", cfg.SwitchPeriod)
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func checkProbability(err *ValidationError, name string, p float64) {
	// written so that NaN fails too
	if !(p >= 0 && p <= 1) {
		err.Addf("%s must be within [0,1], got %v", name, p)
	}
}

package main

import (
	"github.com/daniacca/epidyn/internal/epidemic"
	"github.com/daniacca/epidyn/pkg/client"
)

// policy is one contact regime applied to the same outbreak.
type policy struct {
	name  string
	apply func(b *client.ConfigBuilder, steps int) *client.ConfigBuilder
}

func policies() []policy {
	return []policy{
		{
			name: "no quarantine",
			apply: func(b *client.ConfigBuilder, steps int) *client.ConfigBuilder {
				// groups never activate within the run
				return b.Quarantine(4, steps+1, 0)
			},
		},
		{
			name: "fixed groups",
			apply: func(b *client.ConfigBuilder, _ int) *client.ConfigBuilder {
				return b.Quarantine(4, 7, 0)
			},
		},
		{
			name: "rotating groups",
			apply: func(b *client.ConfigBuilder, _ int) *client.ConfigBuilder {
				return b.Quarantine(4, 7, 2)
			},
		},
		{
			name: "mean field, fixed groups",
			apply: func(b *client.ConfigBuilder, _ int) *client.ConfigBuilder {
				return b.MeanField().Quarantine(4, 7, 0)
			},
		},
	}
}

type outcome struct {
	policy  string
	summary epidemic.Summary
}

// compare runs every policy for steps steps and summarizes each run.
func compare(opts options) ([]outcome, error) {
	var out []outcome
	for _, p := range policies() {
		b := client.NewConfig(opts.size, opts.size).
			Schedule(opts.schedule).
			Infection(opts.pInfect, opts.pRemoval).
			RandomSeed(opts.seed)
		cfg, err := p.apply(b, opts.steps).Build()
		if err != nil {
			return nil, err
		}
		model, err := epidemic.NewModel(cfg)
		if err != nil {
			return nil, err
		}
		model.RunSteps(opts.steps)
		out = append(out, outcome{policy: p.name, summary: epidemic.Summarize(model.Series())})
	}
	return out, nil
}

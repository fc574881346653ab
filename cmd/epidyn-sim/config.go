package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/daniacca/epidyn/internal/epidemic"
)

// SimConfig holds the driver configuration
type SimConfig struct {
	ConfigFile string
	Steps      int
	Seed       int64
	// SeedSet reports whether a seed was given by flag or env, so that an
	// explicit 0 still overrides the config file.
	SeedSet     bool
	LogLevel    string
	Interval    time.Duration
	StreamAddr  string
	WebhookURL  string
	PrintSeries bool
	PrintConfig bool
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	// isBool registers a boolean flag, usable bare as -name
	isBool bool
	setter func(*SimConfig, string) error
}

func resolvers() []configResolver {
	return []configResolver{
		{
			flagName:    "config",
			envVarName:  "EPIDYN_CONFIG",
			defaultVal:  "",
			description: "path to a YAML or JSON model config; defaults are used when empty",
			setter:      func(c *SimConfig, v string) error { c.ConfigFile = v; return nil },
		},
		{
			flagName:    "steps",
			envVarName:  "EPIDYN_STEPS",
			defaultVal:  "100",
			description: "number of steps to run",
			setter: func(c *SimConfig, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					return fmt.Errorf("invalid steps %q", v)
				}
				c.Steps = n
				return nil
			},
		},
		{
			flagName:    "seed",
			envVarName:  "EPIDYN_SEED",
			defaultVal:  "",
			description: "random seed overriding the config file; 0 seeds from the clock",
			setter: func(c *SimConfig, v string) error {
				if v == "" {
					return nil
				}
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid seed %q", v)
				}
				c.Seed = n
				c.SeedSet = true
				return nil
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "EPIDYN_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *SimConfig, v string) error { c.LogLevel = v; return nil },
		},
		{
			flagName:    "interval",
			envVarName:  "EPIDYN_INTERVAL",
			defaultVal:  "0s",
			description: "pause between steps (e.g. 200ms); 0 runs as fast as possible",
			setter: func(c *SimConfig, v string) error {
				d, err := time.ParseDuration(v)
				if err != nil || d < 0 {
					return fmt.Errorf("invalid interval %q", v)
				}
				c.Interval = d
				return nil
			},
		},
		{
			flagName:    "stream-addr",
			envVarName:  "EPIDYN_STREAM_ADDR",
			defaultVal:  "",
			description: "listen address serving step events on /ws (e.g. :8080); empty disables",
			setter:      func(c *SimConfig, v string) error { c.StreamAddr = v; return nil },
		},
		{
			flagName:    "webhook-url",
			envVarName:  "EPIDYN_WEBHOOK_URL",
			defaultVal:  "",
			description: "URL receiving every step event as a JSON POST; empty disables",
			setter:      func(c *SimConfig, v string) error { c.WebhookURL = v; return nil },
		},
		{
			flagName:    "series",
			envVarName:  "EPIDYN_SERIES",
			defaultVal:  "false",
			description: "print every row of the time series",
			isBool:      true,
			setter:      boolSetter(func(c *SimConfig, b bool) { c.PrintSeries = b }),
		},
		{
			flagName:    "print-config",
			envVarName:  "EPIDYN_PRINT_CONFIG",
			defaultVal:  "false",
			description: "print the effective model config as YAML and exit",
			isBool:      true,
			setter:      boolSetter(func(c *SimConfig, b bool) { c.PrintConfig = b }),
		},
	}
}

func boolSetter(set func(*SimConfig, bool)) func(*SimConfig, string) error {
	return func(c *SimConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		set(c, b)
		return nil
	}
}

// loadSimConfig resolves every option from CLI flags, then environment
// variables, then defaults.
func loadSimConfig(fs *flag.FlagSet, args []string, getenv func(string) string) (SimConfig, error) {
	cfg := SimConfig{}
	rs := resolvers()

	for _, r := range rs {
		if r.isBool {
			fs.Bool(r.flagName, false, r.description)
		} else {
			fs.String(r.flagName, "", r.description)
		}
	}
	if err := fs.Parse(args); err != nil {
		return SimConfig{}, err
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	for _, r := range rs {
		var value string
		if explicit[r.flagName] {
			value = fs.Lookup(r.flagName).Value.String()
		} else if envValue := getenv(r.envVarName); envValue != "" {
			value = envValue
		} else {
			value = r.defaultVal
		}
		if err := r.setter(&cfg, value); err != nil {
			return SimConfig{}, fmt.Errorf("%s: %w", r.flagName, err)
		}
	}
	return cfg, nil
}

// loadModelConfig reads the model config file, or the defaults when no
// file is given, and applies the seed override.
func loadModelConfig(sc SimConfig) (epidemic.Config, error) {
	cfg := epidemic.DefaultConfig()
	if sc.ConfigFile != "" {
		var err error
		cfg, err = epidemic.LoadConfigFile(sc.ConfigFile)
		if err != nil {
			return epidemic.Config{}, err
		}
	}
	if sc.SeedSet {
		cfg.RandomSeed = sc.Seed
	}
	if err := epidemic.ValidateConfig(cfg); err != nil {
		return epidemic.Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func lookupEnv(name string) string {
	return os.Getenv(name)
}

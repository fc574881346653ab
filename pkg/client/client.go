// Package client builds model configurations and consumes the step event
// stream served by epidyn-sim.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/daniacca/epidyn/internal/epidemic"
	"github.com/gorilla/websocket"
)

// ConfigBuilder provides a fluent API over epidemic.Config, starting from
// the default parameter set.
type ConfigBuilder struct {
	cfg epidemic.Config
}

// NewConfig starts a builder for a height x width lattice.
func NewConfig(height, width int) *ConfigBuilder {
	cfg := epidemic.DefaultConfig()
	cfg.Height = height
	cfg.Width = width
	return &ConfigBuilder{cfg: cfg}
}

// Radius sets the Moore neighborhood radius.
func (cb *ConfigBuilder) Radius(r int) *ConfigBuilder {
	cb.cfg.Radius = r
	return cb
}

// Schedule selects the update discipline.
func (cb *ConfigBuilder) Schedule(d epidemic.Discipline) *ConfigBuilder {
	cb.cfg.Schedule = string(d)
	return cb
}

// Infection sets the per-contact infection and per-step removal
// probabilities.
func (cb *ConfigBuilder) Infection(pInfect, pRemoval float64) *ConfigBuilder {
	cb.cfg.InfectProb = pInfect
	cb.cfg.RemovalProb = pRemoval
	return cb
}

// SeedBlock infects the central 2x2 block.
func (cb *ConfigBuilder) SeedBlock() *ConfigBuilder {
	cb.cfg.Placement = string(epidemic.PlacementBlock)
	cb.cfg.Seeds = nil
	return cb
}

// SeedRandom infects each cell independently with probability density.
func (cb *ConfigBuilder) SeedRandom(density float64) *ConfigBuilder {
	cb.cfg.Placement = string(epidemic.PlacementRandom)
	cb.cfg.Density = density
	cb.cfg.Seeds = nil
	return cb
}

// SeedAt infects exactly the given cells. Calls accumulate.
func (cb *ConfigBuilder) SeedAt(coords ...epidemic.Coord) *ConfigBuilder {
	cb.cfg.Placement = string(epidemic.PlacementExplicit)
	cb.cfg.Seeds = append(cb.cfg.Seeds, coords...)
	return cb
}

// MeanField samples contacts from the whole population instead of the
// lattice neighborhood.
func (cb *ConfigBuilder) MeanField() *ConfigBuilder {
	cb.cfg.Spatial = false
	return cb
}

// Quarantine enables contact groups of size from step delay on. A positive
// period rotates the groups every period steps; 0 keeps the first groups.
func (cb *ConfigBuilder) Quarantine(size, delay, period int) *ConfigBuilder {
	cb.cfg.GroupSize = size
	cb.cfg.QuarantineDelay = delay
	cb.cfg.GroupSwitch = period > 0
	if period > 0 {
		cb.cfg.SwitchPeriod = period
	}
	return cb
}

// RandomSeed fixes the random source. 0 seeds from the clock.
func (cb *ConfigBuilder) RandomSeed(seed int64) *ConfigBuilder {
	cb.cfg.RandomSeed = seed
	return cb
}

// Build validates and returns the configuration.
func (cb *ConfigBuilder) Build() (epidemic.Config, error) {
	cfg := cb.cfg
	cfg.Seeds = append([]epidemic.Coord(nil), cb.cfg.Seeds...)
	if err := epidemic.ValidateConfig(cfg); err != nil {
		return epidemic.Config{}, err
	}
	return cfg, nil
}

// YAML renders the configuration in the config file format accepted by
// epidyn-sim -config.
func (cb *ConfigBuilder) YAML() ([]byte, error) {
	cfg, err := cb.Build()
	if err != nil {
		return nil, err
	}
	return epidemic.MarshalConfigYAML(cfg)
}

// CheckHealth asks a running stream server whether it is up. The baseURL
// is the server's base URL (e.g., "http://localhost:8080").
func CheckHealth(ctx context.Context, baseURL string) error {
	u, err := url.JoinPath(baseURL, "healthz")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// StreamURL turns a server base URL into its websocket stream URL.
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// ErrStop can be returned by a Subscribe handler to end the subscription
// without an error.
var ErrStop = errors.New("stop subscription")

// Subscribe reads step events from the stream at baseURL and calls handle
// for each one, in step order. It returns nil when the server closes the
// stream normally or handle returns ErrStop, and ctx.Err() when ctx ends.
func Subscribe(ctx context.Context, baseURL string, handle func(epidemic.StepEvent) error) error {
	streamURL, err := StreamURL(baseURL)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", streamURL, err)
	}
	defer conn.Close()

	// unblock the read when ctx ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		var event epidemic.StepEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("decoding step event: %w", err)
		}
		if err := handle(event); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

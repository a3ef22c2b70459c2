// Package observability starts the tracing, log export and profiling
// exporters a binary runs with, and stops them in reverse order.
package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/release-league/internal/config"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

// Binary roles tag profiles and decide which side servers start.
const (
	RoleAPI    = "api"
	RoleScorer = "scorer"
)

type stopper struct {
	name string
	stop func(context.Context) error
}

// Telemetry holds the process logger and the exporters started for it.
type Telemetry struct {
	Logger *logging.Logger
	stops  []stopper
}

// Start enables every exporter the config turns on. On error, whatever was
// already started is stopped before returning.
func Start(cfg config.Config, role string, base *logging.Logger) (*Telemetry, error) {
	if base == nil {
		base = logging.Default()
	}
	t := &Telemetry{Logger: base}

	t.startTracing(cfg)
	if err := t.startProfiling(cfg, role); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("start profiling: %w", err)
	}
	if role == RoleAPI {
		t.startDebugServer(cfg)
	}
	return t, nil
}

func (t *Telemetry) onStop(name string, stop func(context.Context) error) {
	t.stops = append(t.stops, stopper{name: name, stop: stop})
}

// Shutdown stops exporters newest first and flushes the logger last.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.stops) - 1; i >= 0; i-- {
		s := t.stops[i]
		if err := s.stop(ctx); err != nil {
			t.Logger.Warn("telemetry shutdown failed", "exporter", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	t.stops = nil
	_ = t.Logger.Sync()
	return errors.Join(errs...)
}

package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/release-league/internal/config"
	"github.com/uptrace/uptrace-go/uptrace"
)

// startTracing points the global OpenTelemetry providers at Uptrace. With
// log export on, the logger is teed into the OTel log pipeline so entries
// land next to the spans that produced them.
func (t *Telemetry) startTracing(cfg config.Config) {
	dsn := strings.TrimSpace(cfg.UptraceDSN)
	switch {
	case !cfg.UptraceEnabled:
		t.Logger.Info("tracing off", "reason", "UPTRACE_ENABLED=false")
		return
	case dsn == "":
		t.Logger.Info("tracing off", "reason", "no uptrace dsn")
		return
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	t.onStop("uptrace", func(ctx context.Context) error { return uptrace.Shutdown(ctx) })

	if cfg.UptraceLogsEnabled {
		t.Logger = t.Logger.Tee(newOTelLogCore(cfg.LogLevel, cfg.ServiceVersion))
	}
	t.Logger.Info("tracing on",
		"exporter", "uptrace",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
		"log_export", cfg.UptraceLogsEnabled,
	)
}

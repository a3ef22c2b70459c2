package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/release-league/internal/config"
)

// profileTypes lists what is pushed to Pyroscope for a role. The scorer
// fans out over worker goroutines, so it also reports lock contention.
func profileTypes(role string) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if role == RoleScorer {
		types = append(types, pyroscope.ProfileMutexDuration, pyroscope.ProfileBlockDuration)
	}
	return types
}

func (t *Telemetry) startProfiling(cfg config.Config, role string) error {
	if !cfg.PyroscopeEnabled {
		t.Logger.Info("continuous profiling off", "reason", "PYROSCOPE_ENABLED=false")
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		ProfileTypes:      profileTypes(role),
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
			"role":    role,
		},
	})
	if err != nil {
		return err
	}
	t.onStop("pyroscope", func(context.Context) error { return profiler.Stop() })

	t.Logger.Info("continuous profiling on",
		"exporter", "pyroscope",
		"application", cfg.PyroscopeAppName,
		"role", role,
	)
	return nil
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// startDebugServer exposes on-demand pprof on a side port, never on the
// public listener.
func (t *Telemetry) startDebugServer(cfg config.Config) {
	if !cfg.PprofEnabled {
		return
	}
	srv := &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           debugMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		t.Logger.Error("pprof listener failed", "addr", cfg.PprofAddr, "error", err)
		return
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logger.Error("pprof server failed", "error", err)
		}
	}()
	t.onStop("pprof", srv.Shutdown)
	t.Logger.Info("pprof listening", "addr", ln.Addr().String())
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "release-league-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.SteamStoreBaseURL != "https://store.steampowered.com" {
		t.Fatalf("unexpected SteamStoreBaseURL: %q", cfg.SteamStoreBaseURL)
	}
	if cfg.ScoringConcurrency != 3 || cfg.ScoringDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected scoring defaults: %d %s", cfg.ScoringConcurrency, cfg.ScoringDelay)
	}
	if cfg.ScoringBatchSize != 200 || cfg.ScoringBatchMaxAttempts != 5 {
		t.Fatalf("unexpected batch defaults: %d %d", cfg.ScoringBatchSize, cfg.ScoringBatchMaxAttempts)
	}
	if cfg.JobFullRunAt != time.Hour || cfg.JobSnapshotRunAt != 13*time.Hour {
		t.Fatalf("unexpected job slots: %s %s", cfg.JobFullRunAt, cfg.JobSnapshotRunAt)
	}
	if cfg.NATSEnabled {
		t.Fatalf("expected NATS disabled without NATS_URL")
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", " ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("unexpected PprofAddr: %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "release-league-scorer")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "release-league-scorer" {
		t.Fatalf("unexpected PyroscopeAppName: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Fatalf("unexpected CORSAllowedOrigins: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_DatabasePoolValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_MAX_IDLE_CONNS", "8")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when idle conns exceed open conns")
	}
}

func TestLoad_SteamConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STEAM_STORE_BASE_URL", "https://store.example.com/")
	t.Setenv("STEAM_TIMEOUT", "4s")
	t.Setenv("STEAM_MAX_RETRIES", "6")
	t.Setenv("STEAM_RETRY_AFTER_CAP", "30s")
	t.Setenv("STEAM_CIRCUIT_FAILURE_COUNT", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SteamStoreBaseURL != "https://store.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SteamStoreBaseURL)
	}
	if cfg.SteamTimeout != 4*time.Second || cfg.SteamMaxRetries != 6 || cfg.SteamRetryAfterCap != 30*time.Second {
		t.Fatalf("unexpected steam config: %+v", cfg)
	}
	if cfg.SteamCircuitFailureCount != 9 {
		t.Fatalf("unexpected SteamCircuitFailureCount: %d", cfg.SteamCircuitFailureCount)
	}
}

func TestLoad_ScoringValidation(t *testing.T) {
	cases := map[string]string{
		"SCORING_CONCURRENCY":        "0",
		"SCORING_DELAY":              "-1s",
		"SCORING_BATCH_SIZE":         "0",
		"SCORING_BATCH_MAX_ATTEMPTS": "abc",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_NATSConfig(t *testing.T) {
	t.Run("enabled by url", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("NATS_URL", "nats://localhost:4222")
		t.Setenv("NATS_SUBJECT_PREFIX", "rl.draft")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.NATSEnabled || cfg.NATSSubjectPrefix != "rl.draft" {
			t.Fatalf("unexpected nats config: enabled=%v prefix=%q", cfg.NATSEnabled, cfg.NATSSubjectPrefix)
		}
	})

	t.Run("enabled without url", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("NATS_ENABLED", "true")
		t.Setenv("NATS_URL", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when NATS_ENABLED=true without NATS_URL")
		}
	})
}

func TestLoad_QStashConfigParsing(t *testing.T) {
	t.Run("requires token when enabled", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when QSTASH_ENABLED=true without QSTASH_TOKEN")
		}
	})

	t.Run("requires internal job token when enabled", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.example.com")
		t.Setenv("INTERNAL_JOB_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error without INTERNAL_JOB_TOKEN")
		}
	})

	t.Run("parses values", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.example.com")
		t.Setenv("INTERNAL_JOB_TOKEN", "job-token")
		t.Setenv("QSTASH_RETRIES", "5")
		t.Setenv("JOB_FULL_RUN_AT", "2h")
		t.Setenv("JOB_SNAPSHOT_RUN_AT", "14h30m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.QStashEnabled || cfg.QStashRetries != 5 {
			t.Fatalf("unexpected qstash config: %+v", cfg)
		}
		if cfg.JobFullRunAt != 2*time.Hour || cfg.JobSnapshotRunAt != 14*time.Hour+30*time.Minute {
			t.Fatalf("unexpected job slots: %s %s", cfg.JobFullRunAt, cfg.JobSnapshotRunAt)
		}
	})

	t.Run("rejects slot outside day", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("JOB_SNAPSHOT_RUN_AT", "25h")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for JOB_SNAPSHOT_RUN_AT beyond 24h")
		}
	})
}

func TestLoad_LogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != logging.LevelWarn {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RL_DOTENV_LOADED=from-file\nRL_DOTENV_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RL_DOTENV_KEEP", "from-process")
	t.Setenv("RL_DOTENV_LOADED", "")
	os.Unsetenv("RL_DOTENV_LOADED")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("RL_DOTENV_LOADED"); got != "from-file" {
		t.Fatalf("unexpected RL_DOTENV_LOADED: %q", got)
	}
	if got := os.Getenv("RL_DOTENV_KEEP"); got != "from-process" {
		t.Fatalf("expected process value to win, got %q", got)
	}
}

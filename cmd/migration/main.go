package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/release-league/internal/config"
	"github.com/riskibarqy/release-league/internal/platform/logging"
)

var migrationDirCandidates = []string{"./db/migrations", "/app/db/migrations"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := logging.NewJSON(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	dir, err := resolveMigrationsDir(os.Getenv("MIGRATIONS_DIR"))
	if err != nil {
		logger.Error("resolve migrations dir", "error", err)
		return 1
	}
	sourceURL := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(sourceURL, migrateDBURL(cfg.DBURL))
	if err != nil {
		logger.Error("create migrator", "error", err)
		return 1
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := execute(m, args, logger); err != nil {
		logger.Error("migration failed", "command", args[0], "error", err)
		return 1
	}
	return 0
}

// migrator is the subset of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
}

func execute(m migrator, args []string, logger *logging.Logger) error {
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		return ignoreNoChange(m.Up(), logger)
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil || n <= 0 {
				return fmt.Errorf("down steps must be a positive integer, got %q", args[1])
			}
			steps = n
		}
		return ignoreNoChange(m.Steps(-steps), logger)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil || version < -1 {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return m.Force(version)
	case "goto":
		if len(args) < 2 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(args[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target version %q: %w", args[1], err)
		}
		return ignoreNoChange(m.Migrate(uint(target)), logger)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	if err == nil {
		logger.Info("migrations applied")
	}
	return err
}

// migrateDBURL drops driver options the migrate postgres driver does not
// understand.
func migrateDBURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if !query.Has("disable_prepared_binary_result") {
		return raw
	}
	query.Del("disable_prepared_binary_result")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func resolveMigrationsDir(override string) (string, error) {
	candidates := migrationDirCandidates
	if override = strings.TrimSpace(override); override != "" {
		candidates = append([]string{override}, candidates...)
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked %s)", strings.Join(candidates, ", "))
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", name)
}

// Package migrate applies the goose SQL migrations that define the Postgres
// schema.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are created, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var bundled embed.FS

// Bundled returns the migrations compiled into the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source picks the on-disk dir when one is given, else the bundled set.
func Source(dir string) fs.FS {
	if dir == "" {
		return Bundled()
	}
	return os.DirFS(dir)
}

// Runner drives a goose provider against a single database.
type Runner struct {
	provider *goose.Provider
}

func NewRunner(db *sql.DB, migrations fs.FS) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

// Step is one line of migration output.
type Step struct {
	Version int64
	Path    string
	State   string
}

// Run executes up, down or status and reports what happened per migration.
func (r *Runner) Run(ctx context.Context, command string) ([]Step, error) {
	switch command {
	case "up":
		results, err := r.provider.Up(ctx)
		return resultSteps(results), wrapCommand(command, err)
	case "down":
		result, err := r.provider.Down(ctx)
		if result == nil {
			return nil, wrapCommand(command, err)
		}
		return resultSteps([]*goose.MigrationResult{result}), wrapCommand(command, err)
	case "status":
		statuses, err := r.provider.Status(ctx)
		if err != nil {
			return nil, wrapCommand(command, err)
		}
		steps := make([]Step, 0, len(statuses))
		for _, st := range statuses {
			steps = append(steps, Step{Version: st.Source.Version, Path: st.Source.Path, State: string(st.State)})
		}
		return steps, nil
	default:
		return nil, fmt.Errorf("unknown migrate command %q", command)
	}
}

// To moves the schema up or down until it sits at version, given as the
// YYYYMMDDHHMMSS prefix of a migration file.
func (r *Runner) To(ctx context.Context, version string) ([]Step, error) {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", version, err)
	}
	current, err := r.provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("read db version: %w", err)
	}
	var results []*goose.MigrationResult
	switch {
	case target > current:
		results, err = r.provider.UpTo(ctx, target)
	case target < current:
		results, err = r.provider.DownTo(ctx, target)
	}
	return resultSteps(results), wrapCommand("version "+version, err)
}

func resultSteps(results []*goose.MigrationResult) []Step {
	steps := make([]Step, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		steps = append(steps, Step{Version: res.Source.Version, Path: res.Source.Path, State: res.Direction})
	}
	return steps
}

func wrapCommand(command string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("goose %s: %w", command, err)
}

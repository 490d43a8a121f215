package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	var (
		command = flag.String("cmd", "up", "up|down|status|version|create|validate")
		dir     = flag.String("dir", "", "migrations directory; empty uses the bundled set ("+migrate.DefaultDir+" for create)")
		name    = flag.String("name", "", "migration name for -cmd=create")
		version = flag.String("version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	)
	flag.Parse()
	_ = godotenv.Load()

	if err := run(*command, *dir, *name, *version); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(command, dir, name, version string) error {
	// create and validate never need a database or config.
	switch command {
	case "create":
		if name == "" {
			return fmt.Errorf("-name is required for create")
		}
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.Validate(migrate.Source(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		return fmt.Errorf("migrations target postgres; unset GOCART_USE_SQLITE")
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogOutputFormat(),
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": command})

	client, err := db.New(ctx, cfg.DB, false, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()
	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.Source(dir))
	if err != nil {
		return err
	}

	var steps []migrate.Step
	if command == "version" {
		if version == "" {
			return fmt.Errorf("-version is required for version")
		}
		steps, err = runner.To(ctx, version)
	} else {
		steps, err = runner.Run(ctx, command)
	}
	for _, step := range steps {
		fmt.Printf("%-8s %d %s\n", step.State, step.Version, step.Path)
	}
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "steps", len(steps)), "migrate.done")
	return nil
}

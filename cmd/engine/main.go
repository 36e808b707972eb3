package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edvin/panelengine/internal/config"
	"github.com/edvin/panelengine/internal/db"
	"github.com/edvin/panelengine/internal/engine"
	"github.com/edvin/panelengine/internal/logging"
	"github.com/edvin/panelengine/internal/metrics"
	"github.com/edvin/panelengine/internal/provisioner"
)

// The engine processes every pending task row exactly once per invocation.
// It is meant to be triggered by the panel or a timer, not to daemonize.
func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before processing")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("engine"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(ctx, cfg.CoreDatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	corePool, err := db.NewCorePool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer corePool.Close()

	metrics.RegisterEngineMetrics()

	registry := provisioner.NewRegistry(provisioner.Deps{
		DB:            corePool,
		Log:           logger,
		WebRoot:       cfg.WebRoot,
		VhostConfDir:  cfg.VhostConfDir,
		MailRoot:      cfg.MailRoot,
		CertDir:       cfg.CertDir,
		PluginDir:     cfg.PluginDir,
		NetworkDevice: cfg.NetworkDevice,
	})

	runner := engine.NewRunner(corePool, registry, logger, engine.Options{
		SoftwareHelper: cfg.SoftwareHelper,
	})

	if err := runner.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("engine run aborted")
		os.Exit(1)
	}

	logger.Info().Msg("engine run complete")
}

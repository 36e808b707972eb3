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

// The setup command is the interactive variant of the engine: it prints one
// progress line per processed row and always reconciles the host's IP
// addresses, even when no pending row touched the network.
func main() {
	migrateFlag := flag.Bool("migrate", true, "Run database migrations before processing")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("setup"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateFlag {
		fmt.Println("Applying database migrations...")
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
		Interactive:    true,
		Reporter:       engine.ConsoleReporter{W: os.Stdout},
		SoftwareHelper: cfg.SoftwareHelper,
	})

	fmt.Println("Processing pending tasks...")
	if err := runner.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Setup complete.")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakmoss/percolate/internal/core/api"
	"github.com/oakmoss/percolate/internal/core/auth"
	"github.com/oakmoss/percolate/internal/core/config"
	"github.com/oakmoss/percolate/internal/core/db"
	"github.com/oakmoss/percolate/internal/core/server"
	"github.com/oakmoss/percolate/internal/engine"
)

const Version = "0.1.0"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP percolation service",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serverCmd.Flags().Int("port", 8431, "HTTP server port")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set PERC_HMAC_SECRET environment variable)")
	}

	authenticator := auth.NewAuthenticator(secrets, queries)

	service, err := api.NewService(database, queries, engine.New(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if err := service.LoadCorpus(); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, api.Routes(service, authenticator))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting percolate",
		"version", Version,
		"host", cfg.Host,
		"port", cfg.Port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}

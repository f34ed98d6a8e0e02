// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_onboarding/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "marketplace-onboarding",
		Short:        "Registration wizard backend for marketplace sellers, buyers and customers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return startServer()
			},
		},
		newSweepCmd(),
	)
	return root
}

func newSweepCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sweep-documents",
		Short: "Delete orphaned staged documents and expired drafts once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			job, cleanup, err := initializeSweepJob(cfg)
			if err != nil {
				return fmt.Errorf("initializing sweep: %w", err)
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := job.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "documents deleted: %d, drafts purged: %d\n", res.DocumentsDeleted, res.DraftsPurged)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum time the sweep may run")
	return cmd
}

func startServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	case err := <-serverErr:
		log.Printf("ERROR: Server failed to start or crashed: %v", err)
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/presentation/tui"
	httpAdapter "github.com/aretw0/onboard/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin HTTP server",
	Long: `Starts the admin API over HTTP and, unless disabled, a scheduler that fires
the before/after start day conditions of every new hire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		interval, _ := cmd.Flags().GetDuration("tick")
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr())
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(app),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("Starting onboard server", "addr", srv.Addr, "driver", app.Config.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()
		if interval > 0 {
			go runScheduler(ctx, app, interval)
		}

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			app.Logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.Logger.Info("Onboard server stopped gracefully")
			return nil
		}
	},
}

// runScheduler ticks until ctx is done.
func runScheduler(ctx context.Context, app *onboard.App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := app.Trigger.Tick(ctx)
			if err != nil {
				app.Logger.Error("Scheduled tick failed", "error", err)
			}
			if report != nil && report.Fired > 0 {
				app.Logger.Info("Scheduled conditions fired", slog.Int("fired", report.Fired), slog.Int("users", report.Users))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides http.addr)")
	serveCmd.Flags().Duration("tick", time.Minute, "Scheduler interval, 0 disables it")
	serveCmd.Flags().Bool("quiet", false, "Do not print the banner")
}

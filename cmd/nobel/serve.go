package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/alfredjeanlab/nobel/internal/auth"
	"github.com/alfredjeanlab/nobel/internal/config"
	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/journal"
	"github.com/alfredjeanlab/nobel/internal/journal/postgres"
	"github.com/alfredjeanlab/nobel/internal/metrics"
	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/seed"
	"github.com/alfredjeanlab/nobel/internal/server"
	"github.com/alfredjeanlab/nobel/internal/store/jsonfile"
	prizesync "github.com/alfredjeanlab/nobel/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Nobel prize HTTP server",
	GroupID: "system",
	Args:    cobra.NoArgs,
	// Override PersistentPreRunE so we don't build an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		credentials := auth.DefaultCredentials()
		if cfg.CredentialsFile != "" {
			credentials, err = auth.LoadCredentials(cfg.CredentialsFile)
			if err != nil {
				return err
			}
			logger.Info("credentials loaded", "file", cfg.CredentialsFile, "users", len(credentials.Usernames()))
		}

		// Download the dataset on first start. A failed download is not
		// fatal; the server starts with an empty store.
		if _, err := os.Stat(cfg.DataFile); errors.Is(err, fs.ErrNotExist) {
			fetcher := seed.Default()
			fetcher.Logger = logger
			n, err := fetcher.Fetch(cmd.Context(), cfg.SeedURL, cfg.DataFile)
			if err != nil {
				logger.Error("failed to download prize data, starting empty", "url", cfg.SeedURL, "err", err)
			} else {
				logger.Info("prize data downloaded", "url", cfg.SeedURL, "prizes", n)
			}
		}

		store, err := jsonfile.Open(cfg.DataFile)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (NOBEL_NATS_URL not set)")
		}

		// Create mutation journal.
		var jrnl journal.Journal = journal.NoopJournal{}
		if cfg.DatabaseURL != "" {
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			jrnl = pg
			logger.Info("journal enabled")
		} else {
			logger.Info("journal disabled (NOBEL_DATABASE_URL not set)")
		}

		limiter, err := ratelimit.New(cfg.RateLimits, ratelimit.DefaultMaxKeys)
		if err != nil {
			jrnl.Close()
			publisher.Close()
			store.Close()
			return err
		}

		// Set up the sync scheduler if any destinations are configured.
		scheduler := newScheduler(cfg, store, logger)

		opts := server.Options{
			Publisher:   publisher,
			Journal:     jrnl,
			Credentials: credentials,
			Limiter:     limiter,
			Metrics:     metrics.New(),
			Logger:      logger,
		}
		if scheduler != nil {
			opts.OnMutation = scheduler.Trigger
		}
		prizeServer, err := server.NewPrizeServer(store, opts)
		if err != nil {
			jrnl.Close()
			publisher.Close()
			store.Close()
			return err
		}

		// Start gRPC health listener.
		var grpcServer *grpc.Server
		if cfg.GRPCAddr != "" {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				jrnl.Close()
				publisher.Close()
				store.Close()
				return err
			}
			grpcServer = server.NewGRPCServer(prizeServer)
			go func() {
				logger.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
				if err := grpcServer.Serve(lis); err != nil {
					logger.Error("gRPC server error", "err", err)
				}
			}()
		}

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           prizeServer.NewHTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		if scheduler != nil {
			scheduler.Start()
			logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
		}

		logger.Info("nobel server started",
			"http_addr", cfg.HTTPAddr,
			"grpc_addr", cfg.GRPCAddr,
			"data_file", cfg.DataFile,
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown. Ending the health status and SSE streams first
		// lets the HTTP server drain.
		prizeServer.Shutdown()

		if grpcServer != nil {
			grpcServer.GracefulStop()
			logger.Info("gRPC server stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := jrnl.Close(); err != nil {
			logger.Error("error closing journal", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// newScheduler builds the export scheduler from cfg, or returns nil when
// sync is disabled or no destination could be created.
func newScheduler(cfg *config.Config, store *jsonfile.Store, logger *slog.Logger) *prizesync.Scheduler {
	if !cfg.SyncEnabled() {
		return nil
	}
	var dests []prizesync.Destination

	if cfg.SyncS3Bucket != "" {
		s3Dest, err := prizesync.NewS3Destination(
			context.Background(),
			cfg.SyncS3Bucket,
			cfg.SyncS3Key,
			cfg.SyncS3Region,
			cfg.SyncS3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("sync S3 destination enabled", "dest", s3Dest.Name())
		}
	}

	if cfg.SyncGitRepo != "" {
		gitDest := prizesync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch)
		dests = append(dests, gitDest)
		logger.Info("sync git destination enabled", "dest", gitDest.Name())
	}

	if len(dests) == 0 {
		return nil
	}
	return prizesync.NewScheduler(store, dests, cfg.SyncInterval, logger)
}

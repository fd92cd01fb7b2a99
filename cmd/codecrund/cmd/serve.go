package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/jmylchreest/codecrun/internal/codecd"
	"github.com/jmylchreest/codecrun/internal/codecd/codecpb"
	"github.com/jmylchreest/codecrun/internal/engineconfig"
	"github.com/jmylchreest/codecrun/internal/resourcemanager"
	"github.com/jmylchreest/codecrun/internal/version"
	"github.com/jmylchreest/codecrun/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the codec runtime daemon",
	Long: `Start codecrund.

The daemon will:
1. Load configuration from file, environment, and defaults
2. Start the gRPC codec runtime service (configure/encode/decode/flush/reset/close)
3. Start the read-only HTTP admin surface over the Resource Manager's registry
4. Run a periodic sweep that reclaims codec instances idle past the
   configured inactivity threshold`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "path to a config file (default: search ./, ./configs, /etc/codecrun, $HOME/.codecrun)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	versionInfo := version.GetInfo()
	logger.Info("codecrund starting",
		slog.String("version", versionInfo.Version),
		slog.String("commit", versionInfo.CommitSHA),
		slog.String("go", versionInfo.GoVersion),
	)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := engineconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	worker.SetMaxConcurrentWorkers(cfg.Worker.MaxConcurrent)

	registry := resourcemanager.New()
	if cfg.Audit.Enabled {
		store, err := resourcemanager.OpenAuditStore(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		registry.AttachAuditStore(store)
		logger.Info("reclamation audit trail enabled", slog.String("path", cfg.Audit.Path))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.ResourceManager.SweepCron, func() {
		n, err := registry.ReclaimInactive(ctx, time.Now(), cfg.ResourceManager.InactivityThreshold, nil)
		if err != nil {
			logger.Error("reclamation sweep failed", slog.String("error", err.Error()))
			return
		}
		if n > 0 {
			logger.Info("reclamation sweep reclaimed idle codec instances", slog.Int("count", n))
		}
	}); err != nil {
		return fmt.Errorf("scheduling reclamation sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	grpcServer := grpc.NewServer()
	codecpb.RegisterCodecRuntimeServer(grpcServer, codecd.NewServer(logger, registry))

	grpcListener, err := net.Listen("tcp", cfg.Server.GRPCAddress)
	if err != nil {
		return fmt.Errorf("creating gRPC listener: %w", err)
	}
	go func() {
		logger.Info("gRPC codec runtime service listening", slog.String("address", cfg.Server.GRPCAddress))
		if err := grpcServer.Serve(grpcListener); err != nil {
			logger.Error("gRPC server stopped", slog.String("error", err.Error()))
		}
	}()

	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("codecrund admin API", versionInfo.Version))
	codecd.NewAdminHandler(registry).Register(api)
	adminServer := &http.Server{Addr: cfg.Server.AdminAddress, Handler: router}
	go func() {
		logger.Info("admin HTTP surface listening", slog.String("address", cfg.Server.AdminAddress))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin HTTP server stopped", slog.String("error", err.Error()))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("codecrund shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()
	_ = adminServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	return nil
}

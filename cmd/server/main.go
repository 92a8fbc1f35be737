package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/db"
	stGrpc "liyu1981.xyz/safetrack-monitor-service/pkg/grpc"
	stHttp "liyu1981.xyz/safetrack-monitor-service/pkg/http"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/notify"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack"
	"liyu1981.xyz/safetrack-monitor-service/pkg/telemetry"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:          "safetrack",
	Short:        "SafeTrack safety monitoring service",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API, the optional gRPC control API and the telemetry poller",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("safetrack " + version)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, versionCmd)
	addControlCommands(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore returns the configured key-value backend and its release func.
func openStore(ctx context.Context, cfg *common.Config) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return kv.NewMemoryStore(), func() {}, nil
	case "file":
		database, err := db.Open(db.UseSqliteDialector(cfg.DBPath))
		if err != nil {
			return nil, nil, err
		}
		return kv.NewSQLStore(database), func() { _ = database.Close() }, nil
	case "redis":
		store, err := kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "postgres":
		store, err := kv.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func buildSafeTrack(store kv.Store, cfg *common.Config) *safetrack.SafeTrack {
	fetcher := telemetry.NewFetcher(store, telemetry.Options{
		URL:              cfg.TelemetryURL,
		Timeout:          cfg.FetchTimeout,
		CacheTTL:         cfg.CacheTTL,
		HistoryPerDevice: cfg.HistoryPerDevice,
	})
	sender := notify.NewEmailJSSender(notify.EmailJSConfig{
		Endpoint:   cfg.EmailEndpoint,
		ServiceID:  cfg.EmailServiceID,
		TemplateID: cfg.EmailTemplateID,
		PublicKey:  cfg.EmailPublicKey,
	}, nil)

	return safetrack.New(store, fetcher, sender, safetrack.Options{
		AlertStore: safetrack.AlertStoreOptions{
			MaxActive:   cfg.MaxActiveAlerts,
			MaxArchived: cfg.MaxArchivedAlerts,
		},
		Poller: safetrack.PollerOptions{
			Interval:          cfg.PollInterval,
			FreshnessInterval: cfg.FreshnessInterval,
			StaleAfter:        cfg.StaleAfter,
		},
		Dispatcher: safetrack.DispatcherOptions{
			To:    cfg.EmailTo,
			Delay: cfg.BulkSendDelay,
		},
		Session: safetrack.SessionOptions{
			AdminUser: cfg.AdminUser,
			AdminPass: cfg.AdminPass,
		},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	common.ConfigureLogger(common.LogOptions{Dir: cfg.LogDir, Level: zap.InfoLevel})
	logger := common.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, release, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer release()

	core := buildSafeTrack(store, cfg)
	if cfg.AdminUser == "" {
		logger.Warn("admin_user is not set, login is disabled")
	}
	if cfg.AutoRefresh {
		core.Poller.Start(ctx)
	}
	defer core.Poller.Stop()

	defaultLimiter := zap.String("default_limiter",
		fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.DefaultRate, cfg.DefaultBurst))

	var grpcServer *grpc.Server
	if cfg.GrpcHostPort != "" {
		alertServer := &stGrpc.AlertServer{
			SafeTrack:        core,
			RateLimiterStore: safetrack.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
		}
		grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(
			alertServer.CreateRateLimitInterceptor(stGrpc.AllMethods),
			alertServer.CreateAuthInterceptor(stGrpc.AllMethods),
		))
		stGrpc.RegisterAlertServiceServer(grpcServer, alertServer)
		logger.Info("gRPC server created with:", defaultLimiter)

		listener, err := net.Listen("tcp", cfg.GrpcHostPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			logger.Info("start gRPC server on " + cfg.GrpcHostPort)
			if err := grpcServer.Serve(listener); err != nil {
				logger.Error("grpc server failed to serve", zap.Error(err))
			}
		}()
	}

	rs := &stHttp.RestfulServer{
		Server:           gin.Default(),
		SafeTrack:        core,
		RateLimiterStore: safetrack.NewRateLimiterStore(rate.Limit(cfg.DefaultRate), cfg.DefaultBurst),
		ExportPrefix:     cfg.ExportPrefix,
		CleanupDays:      cfg.CleanupDays,
	}
	rs.Setup()
	logger.Info("http server created with:", defaultLimiter, zap.String("store_backend", cfg.StoreBackend))

	srv := &http.Server{Addr: cfg.HTTPHostPort, Handler: rs.Server}
	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HTTPHostPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return srv.Shutdown(shutdownCtx)
}

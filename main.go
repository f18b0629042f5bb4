package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/log/global"

	"calendar-server/core"
	"calendar-server/pkg/resources"
	"calendar-server/pkg/servers"
)

const (
	name    = "calendar-server"
	version = "1.0"
)

func main() {
	v := viper.New()

	var configFile string

	rootCmd := &cobra.Command{
		Use:           name,
		Short:         "Shared calendar served over a line-based command protocol",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := resources.LoadConfig(v, configFile)
			if err != nil {
				return err
			}

			return run(cmd.Context(), config)
		},
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "optional config file (yaml, toml or json)")

	err := resources.BindFlags(v, rootCmd.Flags())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config resources.Config) error {
	// 1. Logger
	ctx, err := resources.CreateLogger(ctx, config, name, version)
	if err != nil {
		return err
	}

	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 2. Telemetry (traces, metrics and the zerolog -> OTel logs bridge)
	closables := []resources.Closable{}

	if config.OtelEnabled {
		shutdownTelemetry, err := resources.CreateTelemetry(ctx, config, name, version)
		if err != nil {
			return fmt.Errorf("unable to setup otel telemetry: %w", err)
		}

		log.Logger = log.Logger.Hook(resources.NewZerologHook(global.GetLoggerProvider(), name, version, zerolog.InfoLevel))
		ctx = log.Logger.WithContext(ctx)

		closables = append(closables, resources.CloseFn(func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownTimeout)
			defer cancel()

			err := shutdownTelemetry(shutdownCtx)
			if err != nil {
				shutdownLogger.Error().Err(err).Msg("unable to flush telemetry")
			}
		}))
	}

	// 3. Wiring
	calendar := core.NewCalendar()
	operations := core.NewOperations(calendar,
		core.WithFuzzyDelta(config.FuzzyDelta),
		core.WithInfoMaxLength(config.InfoMaxLength),
	)
	dispatcher := core.NewDispatcher(operations)
	connections := core.NewConnectionHandler(dispatcher, config.MessageMaxBytes)

	// 4. Daemons/servers lifecycle
	errChan := make(chan error, 16)

	_, baseServer := servers.BuildBaseServer(closables...)
	stopFn := servers.Start(ctx, "base-server", baseServer, errChan)
	defer stopFn(ctx, config.ShutdownTimeout)

	commandName, commandServer := servers.BuildTcpServer("command-server", config.CommandAddress(), connections)
	stopFn = servers.Start(ctx, commandName, commandServer, errChan)
	defer stopFn(ctx, config.ShutdownTimeout)

	if config.RestEnabled {
		restName, restServer := servers.BuildHttpServer("rest-server", newRestServer(config, core.NewHandlers(operations)))
		stopFn = servers.Start(ctx, restName, restServer, errChan)
		defer stopFn(ctx, config.ShutdownTimeout)
	}

	if config.DebugEnabled {
		debugName, debugServer := servers.BuildHttpServer("debug-server", newDebugServer(config))
		stopFn = servers.Start(ctx, debugName, debugServer, errChan)
		defer stopFn(ctx, config.ShutdownTimeout)
	}

	startupLogger.Info().Str("address", config.CommandAddress()).Msg("application running")

	// 5. Wait for shutdown signal
	notifyCtx, cancelNotifyFn := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelNotifyFn()

	select {
	case <-notifyCtx.Done():
		startupLogger.Info().Msg("application shutdown requested")
	case runErr := <-errChan:
		shutdownLogger.Error().Err(runErr).Msg("runtime error")
		return runErr
	}

	return nil
}

func newRestServer(config resources.Config, handlers core.Handlers) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(otelgin.Middleware(name))
	restHandler.Use(resources.NewHTTPMetrics(name).Middleware())
	restHandler.Use(func(gctx *gin.Context) {
		ctx := log.Logger.With().Str("component", "rest-server").Logger().WithContext(gctx.Request.Context())
		gctx.Request = gctx.Request.WithContext(ctx)
		gctx.Next()
	})

	restHandler.POST("/events", handlers.PostEvents)
	restHandler.GET("/events", handlers.GetEvents)
	restHandler.PATCH("/events", handlers.PatchEvents)
	restHandler.DELETE("/events", handlers.DeleteEvents)
	restHandler.GET("/events.ics", handlers.ExportEvents)

	return &http.Server{
		Addr:              config.RestAddress(),
		Handler:           restHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newDebugServer(config resources.Config) *http.Server {
	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &http.Server{
		Addr:              config.DebugAddress(),
		Handler:           debugHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

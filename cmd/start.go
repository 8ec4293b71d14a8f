package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RawMal/AlgoEstate-sub000/core/config"
	"github.com/RawMal/AlgoEstate-sub000/core/database"
	"github.com/RawMal/AlgoEstate-sub000/core/datastore"
	"github.com/RawMal/AlgoEstate-sub000/core/ledger"
	"github.com/RawMal/AlgoEstate-sub000/core/logger"
	"github.com/RawMal/AlgoEstate-sub000/core/middleware/auth"
	"github.com/RawMal/AlgoEstate-sub000/core/middleware/rayid"
	"github.com/RawMal/AlgoEstate-sub000/core/reconcile"

	"github.com/RawMal/AlgoEstate-sub000/feature/assets"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ownership service",
	Long:  `Starts the reconciliation engine and the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		// The datastore seeds the ownership cache; without it there is
		// nothing to serve, so a failure here is fatal.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Datastore connection failed", zap.Error(err))
		}
		logg.Info("Connected to marketplace datastore")

		// 4. Initialize Reconciliation Engine
		store := datastore.New(db)
		ledgerClient := ledger.NewHTTPClient(cfg.Ledger, logg)

		engine, err := reconcile.New(cfg.Reconcile, store, ledgerClient, logg)
		if err != nil {
			logg.Fatal("Invalid engine configuration", zap.Error(err))
		}
		if err := engine.Initialize(context.Background()); err != nil {
			logg.Fatal("Engine initialization failed", zap.Error(err))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Health probe (Public)
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 4. Routes
		handler := assets.NewHandler(assets.NewService(engine, logg))
		handler.RegisterRoutes(app)

		// 6. Metrics Listener (separate port, never behind auth)
		var metricsSrv *http.Server
		if cfg.Server.MetricsEnabled() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv = &http.Server{Addr: ":" + cfg.Server.MetricsPort, Handler: mux}
			go func() {
				logg.Info("Starting metrics listener", zap.String("port", cfg.Server.MetricsPort))
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logg.Error("Metrics listener failed", zap.Error(err))
				}
			}()
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		if err := engine.Shutdown(ctx); err != nil {
			logg.Warn("Engine shutdown timed out", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

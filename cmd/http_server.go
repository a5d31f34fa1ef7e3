package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/core/events"
	"github.com/frahmantamala/payment-gateway/internal/partner"
	partnerPostgres "github.com/frahmantamala/payment-gateway/internal/partner/postgres"
	"github.com/frahmantamala/payment-gateway/internal/payment"
	paymentPostgres "github.com/frahmantamala/payment-gateway/internal/payment/postgres"
	"github.com/frahmantamala/payment-gateway/internal/paymentgateway"
	pghistoryPostgres "github.com/frahmantamala/payment-gateway/internal/pghistory/postgres"
	"github.com/frahmantamala/payment-gateway/internal/transport/rest"
	"github.com/frahmantamala/payment-gateway/pkg/logger"
	"github.com/frahmantamala/payment-gateway/pkg/metrics"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle payment API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.EventBus.Drain(ctx); err != nil {
			deps.Logger.Warn("Event handlers still running at shutdown", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	cfg := deps.Config

	paymentMetrics := metrics.NewPaymentMetrics(deps.Registry)

	gateways, err := buildGateways(cfg.Payment, paymentMetrics, lg)
	if err != nil {
		return err
	}
	registry := paymentgateway.NewRegistry(gateways...)
	lg.Info("payment gateways configured", "order", registry.Names())

	partnerService := partner.NewService(partnerPostgres.NewPartnerRepository(deps.Gorm), lg)
	paymentRepo := paymentPostgres.NewPaymentRepository(deps.Gorm)

	orchestrator := payment.NewOrchestrator(payment.Dependencies{
		Partners: partnerService,
		Gateways: registry,
		Attempts: pghistoryPostgres.NewPgHistoryRepository(deps.Gorm),
		Payments: paymentRepo,
		Events:   deps.EventBus,
		Metrics:  paymentMetrics,
		Timeout:  cfg.Payment.Timeout(),
		Logger:   lg,
	})
	queries := payment.NewQueryService(paymentRepo, lg)
	paymentHandler := payment.NewHandler(orchestrator, queries, lg)

	var metricsHandler http.Handler
	if cfg.Observability.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, paymentHandler, metricsHandler, rest.RouterConfig{
		MetricsPath:    cfg.Observability.Metrics.Path,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Configure(logger.Options{
		Level:      config.Observability.Logging.Level,
		Format:     config.Observability.Logging.Format,
		File:       config.Observability.Logging.File,
		MaxSizeMB:  config.Observability.Logging.MaxSizeMB,
		MaxBackups: config.Observability.Logging.MaxBackups,
	})

	// amounts are written as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := events.NewEventBus(lg)
	subscribeAttemptEvents(bus, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		Gorm:     gormDB,
		Router:   chi.NewRouter(),
		EventBus: bus,
		Registry: reg,
		Logger:   lg,
	}, nil
}

// buildGateways keeps the configured order; the registry picks the first
// gateway that supports a partner.
func buildGateways(cfg internal.PaymentConfig, m *metrics.PaymentMetrics, lg *slog.Logger) ([]paymentgateway.Gateway, error) {
	gateways := make([]paymentgateway.Gateway, 0, len(cfg.Gateways))
	for _, name := range cfg.Gateways {
		var g paymentgateway.Gateway
		switch name {
		case "testpg":
			g = paymentgateway.NewTestPgClient(paymentgateway.TestPgConfig{
				BaseURL:        cfg.TestPg.BaseURL,
				APIKey:         cfg.TestPg.APIKey,
				ConnectTimeout: cfg.TestPg.ConnectTimeout,
				ReadTimeout:    cfg.TestPg.ReadTimeout,
			}, lg)
		case "mock":
			g = paymentgateway.NewMockPgClient(lg)
		default:
			return nil, fmt.Errorf("unknown payment gateway %q", name)
		}
		gateways = append(gateways, paymentgateway.WithMetrics(g, m))
	}
	return gateways, nil
}

func subscribeAttemptEvents(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeAttemptUnresolved, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.AttemptEvent)
		if !ok {
			return nil
		}
		lg.WarnContext(ctx, "pg attempt needs manual reconciliation",
			"attempt_id", e.AttemptID,
			"partner_id", e.PartnerID,
			"provider", e.Provider,
			"amount", e.Amount,
			"reason", e.Reason,
		)
		return nil
	})
	bus.Subscribe(events.EventTypeAttemptFailed, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.AttemptEvent)
		if !ok {
			return nil
		}
		lg.InfoContext(ctx, "pg attempt rejected", "attempt_id", e.AttemptID, "provider", e.Provider, "reason", e.Reason)
		return nil
	})
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}

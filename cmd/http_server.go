package cmd

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

	"github.com/frahmantamala/salesdesk/api"
	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/auth"
	"github.com/frahmantamala/salesdesk/internal/core/events"
	"github.com/frahmantamala/salesdesk/internal/metrics"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	orgPostgres "github.com/frahmantamala/salesdesk/internal/orgchart/postgres"
	"github.com/frahmantamala/salesdesk/internal/transport"
	"github.com/frahmantamala/salesdesk/internal/transport/middleware"
	"github.com/frahmantamala/salesdesk/internal/transport/rest"
	"github.com/frahmantamala/salesdesk/pkg/logger"
	"github.com/getkin/kin-openapi/routers"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
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

	// Signal handling for graceful shutdown
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
			deps.Logger.Error("Event handlers did not finish", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	if config.Observability.Metrics.Enabled {
		metrics.Subscribe(bus)
	}
	bus.SubscribeAll(events.OrgEventTypes, func(ctx context.Context, event events.Event) error {
		lg.Debug("org event", "event_type", event.EventType(), "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})

	service, err := newOrgService(config, db, bus, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var openapiRouter routers.Router
	if config.Org.OpenAPIValidation {
		openapiRouter, err = middleware.LoadOpenAPIRouter(context.Background(), api.Spec)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		Config:         config,
		DB:             db.DB,
		TokenValidator: auth.NewJWTTokenGenerator(config.Security.JWTSecret, 0),
		OrgHandler:     orgchart.NewHandler(transport.NewBaseHandler(lg), service),
		OpenAPIRouter:  openapiRouter,
		Logger:         lg,
	})

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Router:   router,
		EventBus: bus,
	}, nil
}

// newOrgService opens gorm on the sqlx pool so both repositories share
// connections and transactions.
func newOrgService(cfg *internal.Config, db *sqlx.DB, publisher events.Publisher, lg *slog.Logger) (*orgchart.Service, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	store := orgPostgres.NewStore(gdb, db)
	return orgchart.NewService(store, publisher, lg, orgchart.EditorOptions{
		TimeFormat: cfg.Org.AuditTimeFormat,
	}), nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

package stepflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/RealZimboGuy/stepflow/internal/actions"
	"github.com/RealZimboGuy/stepflow/internal/config"
	"github.com/RealZimboGuy/stepflow/internal/controllers"
	"github.com/RealZimboGuy/stepflow/internal/engine"
	"github.com/RealZimboGuy/stepflow/internal/migrations"
	"github.com/RealZimboGuy/stepflow/internal/notify"
	"github.com/RealZimboGuy/stepflow/internal/repository"
	"github.com/RealZimboGuy/stepflow/internal/web"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/core"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ActionRegistry is used by every service started from this package. Callers
// may register their own step actions before calling Start or NewService, the
// HTTP API and LoadDefinitionFile then accept steps of those types.
var ActionRegistry = actions.NewRegistry()

// Service is a fully wired workflow manager together with the resources it
// owns.
type Service struct {
	Manager   *engine.WorkflowManager
	db        *sql.DB
	publisher *notify.NatsPublisher
}

// NewService opens the configured store and run publisher and wires them into
// a WorkflowManager.
func NewService(ctx context.Context) (*Service, error) {
	svc := &Service{}
	clock := core.NewRealClock()

	var workflowStore engine.WorkflowStore
	var runStore engine.RunStore
	databaseType := config.GetSystemSettingString(config.DATABASE_TYPE)
	switch {
	case databaseType == config.DATABASE_TYPE_MEMORY:
		slog.Warn("Using in memory store, workflows and runs are lost on restart")
		store := repository.NewMemoryStore()
		workflowStore, runStore = store, store
	case config.IsSQLDatabase():
		db, err := setupDatabase(databaseType)
		if err != nil {
			return nil, err
		}
		svc.db = db
		workflowStore = repository.NewWorkflowRepository(db)
		runStore = repository.NewRunRepository(db)
	default:
		return nil, fmt.Errorf("%s must be one of MEMORY, POSTGRES, MYSQL, SQLLITE, got %q", config.DATABASE_TYPE, databaseType)
	}

	var publisher engine.RunPublisher = notify.NopPublisher{}
	if natsURL := config.GetSystemSettingString(config.NATS_URL); natsURL != "" {
		p, err := notify.NewNatsPublisher(ctx, natsURL, config.GetSystemSettingString(config.NATS_SUBJECT_PREFIX))
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.publisher = p
		publisher = p
	}

	svc.Manager = engine.NewWorkflowManager(workflowStore, runStore, engine.NewRunEngine(ActionRegistry, clock), publisher, clock)
	return svc, nil
}

// Close releases the database and NATS connections.
func (s *Service) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

// Start boots the workflow service and HTTP server. It blocks until ctx is
// cancelled, then shuts the server down gracefully.
func Start(ctx context.Context, mux *http.ServeMux) error {
	svc, err := NewService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if mux == nil {
		mux = http.NewServeMux()
	}
	apiKeyHash := config.GetSystemSettingString(config.API_KEY_HASH)
	workflowsController := controllers.NewWorkflowsController(svc.Manager, apiKeyHash)
	workflowsController.RegisterRoutes(mux)
	webController := web.NewWebController(svc.Manager, apiKeyHash)
	webController.RegisterRoutes(mux)

	addr := listenAddr()
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting HTTP server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout, err := time.ParseDuration(config.GetSystemSettingString(config.SERVER_SHUTDOWN_TIMEOUT))
		if err != nil {
			timeout = 10 * time.Second
		}
		slog.Info("Shutting down HTTP server", "timeout", timeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupDatabase(databaseType string) (*sql.DB, error) {
	switch databaseType {
	case config.DATABASE_TYPE_POSTGRES:
		return setupPostgresDatabase()
	case config.DATABASE_TYPE_MYSQL:
		return setupMysqlDatabase()
	default:
		return setupSqlLiteDatabase()
	}
}

func setupPostgresDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, fmt.Errorf("%s must be set when using the POSTGRES database type", config.DATABASE_URL)
	}
	slog.Info("Running migrations", "database", "postgres")
	if err := migrations.Up("postgres", dbURL); err != nil {
		return nil, fmt.Errorf("DB migration failed: %w", err)
	}
	slog.Info("Opening Postgres database")
	return openDatabase("postgres", dbURL)
}

func setupSqlLiteDatabase() (*sql.DB, error) {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	slog.Info("Using SQLite database", "file", fileName)
	slog.Info("Running migrations", "database", "sqlite3")
	if err := migrations.Up("sqllite3", "sqlite3://"+fileName); err != nil {
		return nil, fmt.Errorf("DB migration failed: %w", err)
	}
	slog.Info("Opening SQLite database")
	return openDatabase("sqlite3", fileName)
}

func setupMysqlDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, fmt.Errorf("%s must be set when using the MYSQL database type", config.DATABASE_URL)
	}
	if !strings.HasPrefix(dbURL, "mysql://") {
		return nil, fmt.Errorf("%s must start with 'mysql://' for MySQL", config.DATABASE_URL)
	}
	if !strings.Contains(dbURL, "parseTime=true") {
		return nil, fmt.Errorf("%s must contain 'parseTime=true' for MySQL", config.DATABASE_URL)
	}
	slog.Info("Running migrations", "database", "mysql")
	if err := migrations.Up("mysql", dbURL); err != nil {
		return nil, fmt.Errorf("DB migration failed: %w", err)
	}
	slog.Info("Opening MySQL database")
	//remove mysql:// prefix from url
	return openDatabase("mysql", strings.Replace(dbURL, "mysql://", "", 1))
}

func openDatabase(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

// listenAddr returns HTTP_ADDR when set, otherwise all interfaces on the
// configured web port.
func listenAddr() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	port := config.GetSystemSettingInteger(config.SERVER_WEB_PORT)
	if port <= 0 || port > 65535 {
		slog.Warn("Invalid web port, using 8080", "value", config.GetSystemSettingString(config.SERVER_WEB_PORT))
		port = 8080
	}
	return fmt.Sprintf(":%d", port)
}

func SetupLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.GetSystemSettingString(config.LOG_LEVEL))); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(core.NewContextHandler(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339Nano,
		}),
	)))
}

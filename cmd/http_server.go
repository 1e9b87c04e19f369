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

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	approvalpg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	auditpg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	authpg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/events"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
	reportpg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport/rest"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport/swagger"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/user"
	userpg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/user/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/workitem"
	workitempg "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/workitem/postgres"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Logger)

	if err := swagger.ValidateDocument(context.Background(), "./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi document validation failed", "error", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	eventBus := events.NewEventBus(log)
	registerNotificationHandlers(eventBus, log)

	// repositories
	authRepo := authpg.NewRepository(gormDB)
	userRepo := userpg.NewUserRepository(gormDB)
	reportRepo := reportpg.NewReportRepository(gormDB)
	workItemRepo := workitempg.NewWorkItemRepository(gormDB)
	ruleRepo := approvalpg.NewRuleRepository(gormDB)
	ledgerRepo := approvalpg.NewLedgerRepository(gormDB)
	auditRepo := auditpg.NewAuditRepository(gormDB)

	// services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	auditService := audit.NewService(auditRepo, log)
	approvalService := approval.NewService(ruleRepo, log)
	reportService := report.NewService(reportRepo, approvalService, ledgerRepo, auditService, eventBus, log)
	workItemService := workitem.NewService(workItemRepo, reportRepo, auditService, log)
	userService := user.NewService(userRepo, auditService, log)

	// handlers
	baseHandler := transport.NewBaseHandler(log)
	handlers := rest.Handlers{
		Auth:     auth.NewHandler(authService),
		Roles:    auth.NewRoleMiddleware(log),
		User:     user.NewHandler(userService),
		Webhook:  user.NewWebhookHandler(baseHandler, userService, config.Webhook.IdentitySecret, log),
		Report:   report.NewHandler(reportService),
		WorkItem: workitem.NewHandler(workItemService),
		Approval: approval.NewHandler(approvalService),
		Audit:    audit.NewHandler(auditService),
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		EventBus: eventBus,
		Logger:   log,
	}, nil
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

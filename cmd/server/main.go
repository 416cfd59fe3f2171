package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/quotient-crm/approval-engine/internal/application/dispatcher"
	"github.com/quotient-crm/approval-engine/internal/application/engine"
	"github.com/quotient-crm/approval-engine/internal/application/lock"
	"github.com/quotient-crm/approval-engine/internal/config"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
	"github.com/quotient-crm/approval-engine/internal/domain/policy"
	"github.com/quotient-crm/approval-engine/internal/infrastructure/identity"
	"github.com/quotient-crm/approval-engine/internal/infrastructure/persistence/repository"
	"github.com/quotient-crm/approval-engine/internal/infrastructure/persistence/sqlite"
	httpiface "github.com/quotient-crm/approval-engine/internal/interfaces/http"
	"github.com/quotient-crm/approval-engine/internal/notification"
	"github.com/quotient-crm/approval-engine/pkg/database"
	"github.com/quotient-crm/approval-engine/pkg/utils"
)

func main() {
	// Optional .env for local development; viper picks the vars up
	_ = gotenv.Load()

	configPath := os.Getenv("APPROVAL_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting discount approval engine",
		zap.Int("port", cfg.Server.Port),
		zap.Float64("manager_discount_ceiling", cfg.Policy.ManagerDiscountCeiling))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and transaction manager
	txDB := sqlite.NewDB(db.DB, logger)
	approvalRepo := repository.NewApprovalRepository(db.DB, logger)
	quotationRepo := repository.NewQuotationRepository(db.DB, logger)

	// Identity directory from the configured roster
	directory, err := buildDirectory(cfg.Identity)
	if err != nil {
		logger.Fatal("Failed to build identity directory", zap.Error(err))
	}

	logAdapter := utils.NewSugarAdapter(logger)

	// Event dispatcher and subscribers
	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(logAdapter))
	notification.NewAuditLogger(logger).Register(disp)
	if cfg.Notifier.WebhookURL != "" {
		notification.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, logAdapter).Register(disp)
	}

	// Workflow engine
	locks := lock.NewCoordinator(quotationRepo, logAdapter)
	eng := engine.NewEngine(
		approvalRepo,
		quotationRepo,
		directory,
		locks,
		txDB,
		policy.Thresholds{ManagerCeiling: cfg.Policy.ManagerDiscountCeiling},
		engine.WithDispatcher(disp),
		engine.WithLogger(logAdapter),
	)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, eng, logAdapter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// Drain async event handlers before the process exits
	if err := disp.Close(); err != nil {
		logger.Error("Dispatcher close failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// buildDirectory converts the config roster into the identity adapter
func buildDirectory(cfg config.IdentityConfig) (*identity.Directory, error) {
	users := make([]identity.User, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		users = append(users, identity.User{
			ID:          u.ID,
			Role:        approval.Role(u.Role),
			DiscountCap: u.DiscountCap,
		})
	}
	return identity.NewDirectory(users, cfg.ManagerApprover, cfg.AdminApprover)
}

package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/calisthenics-hub/api/auth"
	"github.com/calisthenics-hub/api/config"
	"github.com/calisthenics-hub/api/internal/observability"
	"github.com/calisthenics-hub/api/middleware"
	"github.com/calisthenics-hub/api/repositories"
	"github.com/calisthenics-hub/api/repositories/postgres"
	"github.com/calisthenics-hub/api/services"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Auth pipeline
	Verifier       *auth.Verifier
	Issuer         *auth.Issuer
	Translator     *middleware.FailureTranslator
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	AuthService *services.AuthService
	UserService *services.UserService
}

// NewDependencies connects to PostgreSQL and wires up all application
// dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.IsDevelopment() {
		if err := factory.GetDB().InitSchema(ctx); err != nil {
			_ = factory.Close()
			return nil, err
		}
	}

	deps, err := NewDependenciesFromFactory(cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires dependencies around an existing
// repository factory.
func NewDependenciesFromFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("environment", cfg.Environment))
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.TxManager = d.RepoFactory.GetTransactionManager()
}

// initAuth builds the token verifier and issuer from the signing secret and
// the failure translator that every auth middleware reports to.
func (d *Dependencies) initAuth(cfg *config.Config) error {
	tokenCfg := auth.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL,
	}

	verifier, err := auth.NewVerifier(tokenCfg)
	if err != nil {
		return err
	}
	issuer, err := auth.NewIssuer(tokenCfg)
	if err != nil {
		return err
	}

	d.Verifier = verifier
	d.Issuer = issuer
	d.Translator = middleware.NewFailureTranslator(d.Logger, cfg.ExposeErrorDetails(),
		middleware.WithFailureRecorder(d.Metrics))
	d.AuthMiddleware = middleware.NewAuthMiddleware(verifier, d.Translator, d.Logger)
	return nil
}

func (d *Dependencies) initServices() error {
	authSvc, err := services.NewAuthService(d.Users, d.TxManager, d.Issuer, d.Config.Auth.BcryptCost, d.Logger)
	if err != nil {
		return err
	}
	d.AuthService = authSvc
	d.UserService = services.NewUserService(d.Users, d.TxManager, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}

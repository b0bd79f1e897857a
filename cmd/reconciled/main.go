package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpAdapter "github.com/financbase/reconcile/internal/adapter/http"
	postgresRepo "github.com/financbase/reconcile/internal/adapter/repository/postgres"
	redisRepo "github.com/financbase/reconcile/internal/adapter/repository/redis"
	"github.com/financbase/reconcile/internal/domain"
	"github.com/financbase/reconcile/internal/infrastructure/config"
	"github.com/financbase/reconcile/internal/infrastructure/eventpublisher"
	"github.com/financbase/reconcile/internal/infrastructure/logger"
	"github.com/financbase/reconcile/internal/infrastructure/metrics"
	"github.com/financbase/reconcile/internal/infrastructure/postgres"
	"github.com/financbase/reconcile/internal/infrastructure/redis"
	"github.com/financbase/reconcile/internal/usecase"
)

var migrationsPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "reconciled",
		Short: "Transaction reconciliation service",
		Long:  `reconciled matches bank statement lines against book transactions and reports discrepancies.`,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(cfg.DatabaseURL, migrationsPath)
		},
	}

	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(cfg.DatabaseURL, migrationsPath)
		},
	}

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	var (
		runAccount string
		runType    string
		runFrom    string
		runTo      string
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start and run a reconciliation session for one account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(runAccount, runType, runFrom, runTo)
		},
	}
	runCmd.Flags().StringVar(&runAccount, "account", "", "Account reference to reconcile")
	runCmd.Flags().StringVar(&runType, "type", "bank", "Session type: bank, credit_card or manual")
	runCmd.Flags().StringVar(&runFrom, "from", "", "Period start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runTo, "to", "", "Period end date (YYYY-MM-DD)")

	rootCmd.AddCommand(serveCmd, migrateCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "reconciled"})
	log.Logger = appLogger
	zerolog.DefaultContextLogger = &appLogger

	ctx := context.Background()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()
	outboxRepo := postgresRepo.NewOutboxRepository(pool)

	// Outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger),
		Logger:     appLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Ops server
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		HealthHandler: httpAdapter.NewHealthHandler(pool, redisClient),
		Metrics:       m,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting ops server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("stopped")
	return nil
}

func runOnce(account, sessionType, from, to string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "reconciled"})
	log.Logger = appLogger

	startDate, endDate, err := parsePeriod(from, to)
	if err != nil {
		return err
	}

	matcherCfg, err := cfg.MatcherConfig()
	if err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}

	ctx := context.Background()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	sessionUC := usecase.NewSessionUseCase(
		postgresRepo.NewTxManager(pool),
		postgresRepo.NewSessionRepository(pool),
		postgresRepo.NewStatementLineRepository(pool),
		postgresRepo.NewMatchRepository(pool),
		postgresRepo.NewDiscrepancyRepository(pool),
		postgresRepo.NewRuleRepository(pool),
		redisRepo.NewRuleCache(redisClient),
		postgresRepo.NewOutboxRepository(pool),
		postgresRepo.NewLedgerRepository(pool),
		postgresRepo.NewStatementFeedRepository(pool),
		redisRepo.NewSessionLock(redisClient),
		postgresRepo.NewULIDGenerator(),
		matcherCfg,
		metrics.New(),
		cfg.SessionBatchSize,
		cfg.SessionTimeout,
	).WithRetrier(postgresRepo.NewRetrier(appLogger))

	session, err := sessionUC.StartSession(ctx, usecase.StartSessionInput{
		AccountRef: account,
		Type:       domain.SessionType(sessionType),
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	appLogger.Info().
		Str("session_id", session.ID).
		Str("account_ref", session.AccountRef).
		Msg("session created")

	result, err := sessionUC.RunSession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("reconciliation run failed: %w", err)
	}

	fmt.Printf("Session %s finished: %s\n", result.ID, result.Status)
	fmt.Printf("  Lines:         %d\n", result.Totals.TotalLines)
	fmt.Printf("  Matched:       %d\n", result.Totals.Matched)
	fmt.Printf("  Unmatched:     %d\n", result.Totals.Unmatched)
	fmt.Printf("  Discrepancies: %d\n", result.Totals.Discrepancies)
	fmt.Printf("  Statement:     %s\n", result.Totals.StatementBalance)
	fmt.Printf("  Book:          %s\n", result.Totals.BookBalance)
	fmt.Printf("  Difference:    %s\n", result.Totals.Difference)
	if result.FailureReason != "" {
		fmt.Printf("  Failure:       %s\n", result.FailureReason)
	}
	return nil
}

func parsePeriod(from, to string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: %w", from, err)
	}
	endDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q: %w", to, err)
	}
	return startDate.UTC(), endDate.UTC(), nil
}

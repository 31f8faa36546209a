package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	httpadp "tier0-lending/internal/adapter/http"
	"tier0-lending/internal/adapter/repository/gormstore"
	"tier0-lending/internal/config"
	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/domain/loan"
	"tier0-lending/internal/infrastructure/cache"
	"tier0-lending/internal/infrastructure/db"
	"tier0-lending/internal/infrastructure/ledger"
	"tier0-lending/internal/infrastructure/logging"
	"tier0-lending/internal/observability/metrics"
	"tier0-lending/internal/usecase/lending"
	"tier0-lending/internal/usecase/sweeper"
	"tier0-lending/pkg/id"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	if err := gormstore.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("open redis")
		}
		defer rdb.Close()
	}

	var led asset.Ledger
	switch cfg.LedgerBackend {
	case config.LedgerRedis:
		led = ledger.NewRedis(rdb, cfg.AssetSymbol)
	default:
		led = ledger.NewMemory()
	}

	m := metrics.Pool()
	store := gormstore.NewGormUoW(gdb)
	uc, err := lending.NewUsecase(store.Repos(), store, led, lending.Config{
		Params:   loan.DefaultParams(),
		Pool:     cfg.PoolAddress,
		Operator: cfg.OperatorAddress,
	}, lending.WithLogger(log), lending.WithMetrics(m))
	if err != nil {
		log.WithError(err).Fatal("build loan pool")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := uc.Initialize(ctx); err != nil {
		log.WithError(err).Fatal("initialize loan pool")
	}
	p := uc.Params()
	log.WithFields(logrus.Fields{
		"pool":              p.Pool,
		"operator":          p.Operator,
		"asset":             cfg.AssetSymbol,
		"ledger":            cfg.LedgerBackend,
		"min_loan":          p.MinLoan,
		"max_loan":          p.MaxLoan,
		"loan_term_seconds": p.TermSeconds,
		"interest_rate_bps": p.InterestRateBps,
	}).Info("loan pool ready")

	if cfg.SweepSchedule != "" {
		sw := sweeper.New(uc, cfg.OperatorAddress, cfg.SweepBatch, log, m)
		if err := sw.Start(cfg.SweepSchedule); err != nil {
			log.WithError(err).Fatal("start sweeper")
		}
		defer sw.Stop()
	}

	checks := []httpadp.Check{{Name: "db", Fn: func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	if rdb != nil {
		checks = append(checks, httpadp.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.New}))
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.RegisterRoutes(e, httpadp.Deps{
		Lending:        uc,
		Ledger:         led,
		JWTSecret:      []byte(cfg.JWTSecret),
		Redis:          rdb,
		IdempotencyTTL: time.Duration(cfg.IdempTTLSecs) * time.Second,
		Checks:         checks,
		Log:            log,
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

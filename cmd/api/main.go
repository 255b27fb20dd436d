package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	"github.com/evetrack/corphangar/internal/application/alerts"
	"github.com/evetrack/corphangar/internal/application/maintenance"
	appsync "github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/infrastructure/esi"
	"github.com/evetrack/corphangar/internal/infrastructure/notify"
	"github.com/evetrack/corphangar/internal/infrastructure/postgres"
	infraredis "github.com/evetrack/corphangar/internal/infrastructure/redis"
	httpRouter "github.com/evetrack/corphangar/internal/interfaces/http"
	"github.com/evetrack/corphangar/pkg/config"
	"github.com/evetrack/corphangar/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}

	corpRepo := postgres.NewCorporationRepository(pool)
	divRepo := postgres.NewDivisionRepository(pool)
	locRepo := postgres.NewLocationRepository(pool)
	itemRepo := postgres.NewHangarItemRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	snapRepo := postgres.NewSnapshotRepository(pool)
	alertRepo := postgres.NewAlertRuleRepository(pool)
	logRepo := postgres.NewContainerLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	esiClient := esi.NewClient(cfg.ESI)
	tokens := esi.NewConfigTokenProvider(cfg.ESI)
	prices := infraredis.NewPriceCache(redisClient, esiClient, cfg.Sync.PriceCacheTTL, log)
	locker := infraredis.NewLocker(redisClient)

	notifier := notify.NewWebhookNotifier(10 * time.Second)
	alertUC := alerts.NewUseCase(alertRepo, txRepo, notifier, cfg.Sync.AlertWindow, log)

	syncUC := appsync.NewUseCase(
		corpRepo, divRepo, locRepo, itemRepo, logRepo, alertRepo,
		txRunner, esiClient, tokens, prices, locker, alertUC,
		appsync.Options{
			LockTTL:       cfg.Sync.LockTTL,
			RetryAttempts: cfg.Sync.RetryAttempts,
			RetryBackoff:  cfg.Sync.RetryBackoff,
			MaxParallel:   cfg.Sync.MaxParallel,
		},
		log,
	)

	cleanupUC := maintenance.NewCleanupUseCase(corpRepo, snapRepo, txRepo, maintenance.Options{
		KeepSnapshots:        cfg.Sync.KeepSnapshots,
		TransactionRetention: time.Duration(cfg.Sync.TxRetentionDays) * 24 * time.Hour,
	}, log)

	// Ciclo periódico de sincronización sobre todas las corporaciones rastreadas.
	go func() {
		ticker := time.NewTicker(cfg.Sync.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				summary, err := syncUC.SyncAll(ctx)
				if err != nil {
					log.Error().Err(err).Msg("pasada de sincronización falló")
					continue
				}
				log.Info().
					Int("dispatched", summary.Dispatched).
					Int("succeeded", summary.Succeeded).
					Int("skipped", summary.Skipped).
					Int("failed", summary.Failed).
					Msg("pasada de sincronización completada")
			}
		}
	}()

	// Poda periódica de retención (snapshots y transacciones viejas).
	go func() {
		ticker := time.NewTicker(cfg.Sync.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := cleanupUC.Run(ctx)
				if err != nil {
					log.Error().Err(err).Msg("poda de retención falló")
					continue
				}
				log.Info().
					Int64("snapshots_deleted", res.SnapshotsDeleted).
					Int64("transactions_deleted", res.TransactionsDeleted).
					Msg("poda de retención completada")
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CorpRepo: corpRepo,
		ItemRepo: itemRepo,
		TxRepo:   txRepo,
		SnapRepo: snapRepo,
		LogRepo:  logRepo,
		SyncUC:   syncUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/application/stock"
	"github.com/clawops/clawfleet-api/internal/infrastructure/postgres"
	"github.com/clawops/clawfleet-api/internal/infrastructure/redislock"
	httpRouter "github.com/clawops/clawfleet-api/internal/interfaces/http"
	"github.com/clawops/clawfleet-api/pkg/config"
	"github.com/clawops/clawfleet-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios atados al pool: lecturas fuera de transacción. Las
	// escrituras del motor siempre pasan por los repos que ata el TxRunner.
	itemRepo := postgres.NewStockItemRepository(pool)
	machineRepo := postgres.NewMachineRepository(pool)
	logRepo := postgres.NewAssignmentLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Locker de ranuras/artículos: Redis cuando hay varias réplicas del API;
	// en proceso para el despliegue de una sola réplica.
	var locker assignment.SlotLocker
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		locker = redislock.NewLocker(client, cfg.Engine.LockWait, cfg.Engine.LockTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("locker distribuido sobre Redis")
	} else {
		locker = assignment.NewKeyedLock(cfg.Engine.LockWait)
		log.Info().Msg("locker en proceso (una sola réplica)")
	}

	engine := assignment.NewEngine(txRunner, itemRepo, machineRepo, locker, log)
	stockUC := stock.NewUseCase(itemRepo, machineRepo, logRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		StockUC:   stockUC,
		JWTSecret: cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/customer-dedup/internal/application/duplicates"
	"github.com/jhoicas/customer-dedup/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/customer-dedup/internal/interfaces/http"
	"github.com/jhoicas/customer-dedup/pkg/config"
	"github.com/jhoicas/customer-dedup/pkg/jwt"
	"github.com/jhoicas/customer-dedup/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title        Customer Dedup API
// @version      1.0
// @description  Detección de clientes duplicados (nombre griego, teléfono, AFM) previa al alta.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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
		Int("threshold", cfg.Dedup.Threshold).
		Bool("strict_final_pass", cfg.Dedup.StrictFinalPass).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	customerRepo := postgres.NewCustomerRepository(pool, cfg.Dedup.CustomersTable)
	duplicateUC := duplicates.NewDuplicateUseCase(customerRepo, log, duplicates.Config{
		SearchLimit:     cfg.Dedup.SearchLimit,
		PhoneLimit:      cfg.Dedup.PhoneLimit,
		QueryTimeout:    cfg.Dedup.QueryTimeout,
		StrictFinalPass: cfg.Dedup.StrictFinalPass,
	})

	// Sin JWT_SECRET (solo development) las rutas quedan abiertas.
	var verifier *jwt.Verifier
	if cfg.JWT.Secret != "" {
		verifier, err = jwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
		if err != nil {
			log.Fatal().Err(err).Msg("verificador JWT")
		}
	} else {
		log.Warn().Msg("JWT_SECRET vacío: autenticación desactivada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Customer Dedup API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		DuplicateUC:      duplicateUC,
		DefaultThreshold: cfg.Dedup.Threshold,
		Verifier:         verifier,
		AllowedRoles:     cfg.JWT.AllowedRoles,
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

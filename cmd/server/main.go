package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"pescasolic/internal/config"
	"pescasolic/internal/handlers"
	"pescasolic/internal/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h, err := handlers.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize handlers: %v", err)
	}
	defer h.Close()

	sched, err := startScheduler(cfg, h)
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		ServerHeader: "pescasolic",
		AppName:      "auxilio-defeso API v1.0",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
	}))
	app.Use(middleware.ErrorHandlerMiddleware(&middleware.ErrorHandlerConfig{
		EnableStackTrace:   cfg.Logging.EnableStackTrace,
		EnableLogging:      cfg.Logging.EnableRequestLog,
		ShowInternalErrors: cfg.Logging.EnableErrorDetails,
	}))

	registerRoutes(app, h, cfg)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("starting server on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// registerRoutes lays out the Fiber surface of spec.md §6, grouped the way
// the teacher groups its own /api/v1/... routes.
func registerRoutes(app *fiber.App, h *handlers.Handlers, cfg *config.Config) {
	app.Get("/health", h.Health.Health)
	app.Get("/metrics", h.Health.Metrics)

	protected := app.Group("", middleware.JWT(cfg.Auth.JWTSecret), middleware.RequestContext())

	solicitacao := protected.Group("/solicitacao")
	solicitacao.Post("/classificador", h.Solicitacao.Classificador)
	solicitacao.Post("/extracao", h.Solicitacao.Extracao)
	solicitacao.Post("/elegibilidade", h.Solicitacao.Elegibilidade)
	solicitacao.Get("/dashboard", h.Solicitacao.Dashboard)
	solicitacao.Get("/:id", h.Solicitacao.Get)

	processos := protected.Group("/processos")
	processos.Get("/consultar/:cnj", h.Processos.Consultar)
	processos.Get("/dashboard", h.Processos.Dashboard)
}

// startScheduler wires C8 onto a cron trigger in the configured timezone,
// running every SCHED_STALE_AFTER-independent "every 3 days at midnight"
// default schedule (§4.8).
func startScheduler(cfg *config.Config, h *handlers.Handlers) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc("0 0 */3 * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Minute)
		defer cancel()

		summary, err := h.LegalCaseSync.Run(ctx)
		if err != nil {
			log.Printf("[legalcase-sync] run failed: %v", err)
			return
		}
		log.Printf("[legalcase-sync] candidates=%d updated=%d skipped=%d new_movements=%d field_changes=%d errors=%d",
			summary.Candidates, summary.Updated, summary.Skipped, summary.NewMovements, summary.FieldChanges, len(summary.Errors))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule legal case sync: %w", err)
	}

	c.Start()
	return c, nil
}

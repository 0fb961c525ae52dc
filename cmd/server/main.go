package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/config"
	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/handlers"
	"github.com/envelopezero/backend/internal/notify"
	"github.com/envelopezero/backend/internal/services"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// @title EnvelopeZero API
// @version 1.0
// @description Envelope budgeting backend: magic-link sign-in, ownership-scoped ledger and monthly envelope projection.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, database.GetConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if cfg.DevSeed {
		if err := services.SeedDevData(ctx, db); err != nil {
			log.Fatalf("Failed to seed development data: %v", err)
		}
		log.Println("Development data seeded")
	}

	redisClient := database.InitRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// With a broker configured the mailer worker delivers; otherwise send inline.
	var notifier notify.Notifier
	if cfg.AMQP.URL != "" {
		amqpClient, err := notify.NewAMQPClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatalf("Failed to initialize AMQP client: %v", err)
		}
		defer amqpClient.Close()
		notifier = amqpClient
	} else {
		notifier = notify.NewDeliveringNotifier(
			notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From),
			notify.NewOutboxStore(db),
		)
		log.Printf("AMQP disabled - sending email directly via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	}

	auditLogger := audit.NewAuditLogger()

	svc := handlers.Services{
		Sessions: services.NewPgSessionLookup(db),
		Auth: services.NewAuthService(db, notifier,
			services.NewMagicLinkLimiter(redisClient, cfg.Auth.MagicLinkMaxPerWindow, cfg.Auth.MagicLinkWindow),
			auditLogger,
			services.AuthSettings{
				AppOrigin:        cfg.Server.AppOrigin,
				MagicLinkTTL:     cfg.Auth.MagicLinkTTL,
				SessionTTL:       cfg.Auth.SessionTTL,
				ExposeDebugToken: !cfg.IsProduction(),
			}),
		Budgets:      services.NewBudgetService(db, auditLogger, cfg.Features.MultiBudget),
		Accounts:     services.NewAccountService(db, auditLogger),
		Categories:   services.NewCategoryService(db, auditLogger),
		Transactions: services.NewTransactionService(db, auditLogger),
		Projection:   services.NewProjectionService(db),
		Assignments:  services.NewAssignmentService(db, auditLogger),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(cfg, svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped with error: %v", err)
		return
	}
	log.Println("Server stopped")
}

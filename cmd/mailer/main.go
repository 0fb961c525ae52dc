package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/envelopezero/backend/internal/config"
	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/notify"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// The mailer consumes magic-link emails published by the server and delivers
// them over SMTP, stamping each outbox row once sent.
func main() {
	fs := pflag.NewFlagSet("mailer", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.AMQP.URL == "" {
		log.Fatal("AMQP_URL is required for the mailer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, database.GetConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	amqpClient, err := notify.NewAMQPClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
	if err != nil {
		log.Fatalf("Failed to initialize AMQP client: %v", err)
	}
	defer amqpClient.Close()

	deliverer := notify.NewDeliveringNotifier(
		notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From),
		notify.NewOutboxStore(db),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.Consume(gctx, deliverer.Notify)
	})

	log.Printf("[MAILER] Started, delivering via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[MAILER] Stopped with error: %v", err)
		return
	}
	log.Println("[MAILER] Stopped")
}

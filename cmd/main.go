package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/reportdeck/internal/alert"
	"github.com/reportdeck/internal/api"
	"github.com/reportdeck/internal/config"
	"github.com/reportdeck/internal/database"
	"github.com/reportdeck/internal/mailer"
	"github.com/reportdeck/internal/monitor"
	"github.com/reportdeck/internal/notify"
	"github.com/reportdeck/internal/objectstore"
	"github.com/reportdeck/internal/render"
	"github.com/reportdeck/internal/report"
	"github.com/reportdeck/internal/schedule"
	"github.com/reportdeck/internal/scheduler"
	"github.com/reportdeck/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if err := database.Initialize(cfg.Database.Path); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	store := storage.NewGormStore(database.GetDB())

	objects, err := objectstore.NewFileStore(cfg.Artifacts.Dir, cfg.Artifacts.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize artifact store")
	}

	smtp := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)

	var webhook *notify.SlackNotifier
	if cfg.Alert.Slack.WebhookURL != "" {
		webhook = notify.NewSlackNotifier(cfg.Alert.Slack.WebhookURL, cfg.Alert.Slack.Channel, "reportdeck")
	}
	alertManager := alert.NewManager(&alert.Config{
		SlackToken:     cfg.Alert.Slack.Token,
		SlackChannel:   cfg.Alert.Slack.Channel,
		SMTPHost:       cfg.SMTP.Host,
		SMTPPort:       cfg.SMTP.Port,
		EmailFrom:      cfg.SMTP.From,
		EmailPassword:  cfg.SMTP.Password,
		EmailReceivers: cfg.Alert.Email.ToReceivers,
	}, webhook, log)

	executor := report.NewExecutor(store, render.NewHTMLRenderer(), objects, smtp, cfg.Server.BaseURL, log)
	registry := schedule.NewRegistry(log)
	orch := scheduler.New(store, registry, executor, log)

	ctx := context.Background()
	if err := orch.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize scheduler")
	}

	mon := monitor.New(store, alertManager, cfg.Monitor.FailureThreshold, log)
	if err := mon.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start endpoint monitor")
	}
	defer mon.Stop()

	server := api.NewServer(store, orch, mon, api.Config{
		JWTSecret:    cfg.Auth.JWTSecret,
		ArtifactsDir: cfg.Artifacts.Dir,
	}, log)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

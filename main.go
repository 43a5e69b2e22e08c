package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmhodges/clock"

	"github.com/pathakanu/jobMemo/internal/api"
	"github.com/pathakanu/jobMemo/internal/autoreminder"
	"github.com/pathakanu/jobMemo/internal/config"
	"github.com/pathakanu/jobMemo/internal/database"
	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/notify"
	myopenai "github.com/pathakanu/jobMemo/internal/openai"
	"github.com/pathakanu/jobMemo/internal/scheduler"
	"github.com/pathakanu/jobMemo/internal/store"
	"github.com/pathakanu/jobMemo/internal/telegram"
	"github.com/pathakanu/jobMemo/internal/twilio"
)

var log = logger.New("main")

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.New(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Database init failed")
	}

	sender, err := newSender(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Notification channel init failed")
	}

	clk := clock.New()
	reminders := store.NewReminderStore(db, clk)
	applications := store.NewApplicationStore(db, reminders)

	engine := autoreminder.New(reminders, clk, cfg.AutoReminderQueue)
	engine.Start()

	sched := scheduler.New(reminders, notify.NewDispatcher(sender, cfg.DispatchTimeout), scheduler.Options{
		Interval: cfg.ReminderInterval,
		Clock:    clk,
		Location: cfg.LocalTimezone,
	})
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Scheduler start failed")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.New(reminders, applications, sched, engine, cfg.AdminToken).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	waitForShutdown(server, sched, engine)
}

func newSender(cfg *config.Config) (notify.Sender, error) {
	composer := myopenai.New(cfg.OpenAIAPIKey)
	if composer.Enabled() {
		log.Info().Msg("Messages are polished with OpenAI")
	}

	switch cfg.NotifyChannel {
	case config.ChannelWhatsApp:
		client := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
		log.Info().Str("from", cfg.TwilioWhatsAppNumber).Msg("Sending reminders via WhatsApp")
		return notify.NewMessageSender(client, composer, cfg.LocalTimezone), nil
	case config.ChannelTelegram:
		client, err := telegram.New(cfg.TelegramBotToken)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("Sending reminders via Telegram")
		return notify.NewMessageSender(client, composer, cfg.LocalTimezone), nil
	default:
		log.Warn().Msg("Stub notification channel, reminders are only logged")
		return notify.NewStubSender(), nil
	}
}

func waitForShutdown(server *http.Server, sched *scheduler.Scheduler, engine *autoreminder.Engine) {
	stopCtx := make(chan os.Signal, 1)
	signal.Notify(stopCtx, syscall.SIGINT, syscall.SIGTERM)
	<-stopCtx
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	sched.Stop()
	engine.Stop()
}

// File: cmd/app/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-calendar-assistant/internal/config"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/ports/adapter"
	"whatsapp-calendar-assistant/internal/infra/ai"
	pg "whatsapp-calendar-assistant/internal/infra/db/postgres"
	httpapi "whatsapp-calendar-assistant/internal/infra/http"
	"whatsapp-calendar-assistant/internal/infra/logging"
	"whatsapp-calendar-assistant/internal/infra/metrics"
	red "whatsapp-calendar-assistant/internal/infra/redis"
	"whatsapp-calendar-assistant/internal/infra/render"
	"whatsapp-calendar-assistant/internal/infra/resend"
	"whatsapp-calendar-assistant/internal/infra/sched"
	tele "whatsapp-calendar-assistant/internal/infra/telegram"
	"whatsapp-calendar-assistant/internal/infra/twilio"
	"whatsapp-calendar-assistant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Time zone and clocks ----
	loc, err := time.LoadLocation(cfg.Digest.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Digest.Timezone, err)
	}
	clock := calendar.NewClock(loc, cfg.Assistant.RolloverHour)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	eventRepo := pg.NewPostgresEventRepo(pool)
	jobRepo := pg.NewCronJobRepo(pool, tm)
	ledgerRepo := pg.NewDigestLogRepo(pool)
	auditRepo := pg.NewMessageLogRepo(pool)

	// ---- Delivery adapters ----
	chatSender, err := twilio.NewSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
	if err != nil {
		log.Fatalf("twilio: %v", err)
	}

	var emailSender adapter.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender, err = resend.NewSender(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Fatalf("resend: %v", err)
		}
	} else {
		logger.Warn().Msg("email.resend_api_key not set; email digests disabled")
	}

	renderer := render.NewChromeRenderer(ctx)
	defer renderer.Close()

	// ---- Optional collaborators ----
	var extractor adapter.EventExtractor
	if cfg.AI.OpenAIKey != "" {
		extractor, err = ai.NewOpenAIExtractor(cfg.AI.OpenAIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("openai extractor: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("ai extractor enabled")
	} else {
		logger.Info().Msg("ai.openai_key not set; deterministic parser only")
	}

	var alerts adapter.AlertNotifier = tele.NoopNotifier{}
	if cfg.Alerts.TelegramToken != "" && cfg.Alerts.ChatID != 0 {
		alertBot, err := tele.NewAlertBot(cfg.Alerts.TelegramToken, cfg.Alerts.ChatID, logger)
		if err != nil {
			log.Fatalf("telegram alerts: %v", err)
		}
		alerts = alertBot
	}

	// ---- Use cases ----
	messageUC := usecase.NewMessageUseCase(
		userRepo, eventRepo, auditRepo, tm, clock, rateLimiter, extractor,
		cfg.Assistant.RateLimitPerMin, time.Minute, logger)

	window := usecase.Window{Hour: cfg.Digest.Hour, ToleranceMin: cfg.Digest.ToleranceMin}
	digestUC := usecase.NewDigestUseCase(
		jobRepo, userRepo, eventRepo, ledgerRepo, auditRepo,
		chatSender, emailSender, renderer, alerts, clock, window,
		cfg.Digest.HorizonDays, cfg.Digest.Parallelism, logger)

	reminderUC := usecase.NewReminderUseCase(eventRepo, userRepo, auditRepo, chatSender, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, eventRepo)

	// ---- HTTP ----
	srv := httpapi.NewServer(cfg, messageUC, digestUC, statsUC, jobRepo, clock, window, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Scheduler ----
	scheduler := sched.New(loc, jobRepo, digestUC, reminderUC, cfg.Digest.Hour, logger)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	scheduler.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}

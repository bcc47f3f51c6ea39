// Package http exposes the assistant's inbound surface: the Twilio
// webhook, the worker and cron triggers, the admin stats API, and the
// operational endpoints.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"whatsapp-calendar-assistant/internal/config"
	"whatsapp-calendar-assistant/internal/domain/calendar"
	"whatsapp-calendar-assistant/internal/domain/model"
	"whatsapp-calendar-assistant/internal/domain/ports/repository"
	"whatsapp-calendar-assistant/internal/infra/twilio"
	"whatsapp-calendar-assistant/internal/usecase"
)

type Server struct {
	cfg       *config.Config
	messageUC usecase.MessageUseCase
	digestUC  usecase.DigestUseCase
	statsUC   usecase.StatsUseCase
	jobs      repository.CronJobRepository
	clock     *calendar.Clock
	window    usecase.Window
	log       *zerolog.Logger
	server    *http.Server
}

func NewServer(
	cfg *config.Config,
	messageUC usecase.MessageUseCase,
	digestUC usecase.DigestUseCase,
	statsUC usecase.StatsUseCase,
	jobs repository.CronJobRepository,
	clock *calendar.Clock,
	window usecase.Window,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "HTTPServer").Logger()
	return &Server{
		cfg:       cfg,
		messageUC: messageUC,
		digestUC:  digestUC,
		statsUC:   statsUC,
		jobs:      jobs,
		clock:     clock,
		window:    window,
		log:       &compLog,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/webhook/whatsapp", s.handleWhatsAppWebhook)

	r.Get("/api/worker/process", s.handleWorkerProcess)
	r.Post("/api/worker/process", s.handleWorkerProcess)
	r.With(s.bearerAuth(s.cfg.Cron.Secret)).Post("/api/cron/digest", s.handleCronDigest)

	r.With(s.bearerAuth(s.cfg.Admin.APIKey)).Get("/api/v1/stats", s.handleStats)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Admin.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Admin.Port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleWhatsAppWebhook answers every request with HTTP 200 and a TwiML
// envelope. Twilio retries non-200 responses, and a retried message would
// re-run the whole pipeline, so even internal failures reply 200. The only
// exception is a bad signature, which is not a Twilio request at all.
func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeTwiML(w, "")
		return
	}

	if s.cfg.Twilio.ValidateSig {
		sig := r.Header.Get("X-Twilio-Signature")
		if !twilio.ValidateSignature(s.cfg.Twilio.AuthToken, requestURL(r), r.PostForm, sig) {
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	from := strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:")
	body := r.PostFormValue("Body")

	reply := s.messageUC.Handle(r.Context(), from, body)
	s.writeTwiML(w, reply)
}

func (s *Server) handleWorkerProcess(w http.ResponseWriter, r *http.Request) {
	report := s.digestUC.RunOnce(r.Context())
	s.writeJSON(w, http.StatusOK, report)
}

// handleCronDigest is the external scheduler's entry point. It only
// enqueues when called inside the delivery window; a mistimed trigger is
// acknowledged but produces no job.
func (s *Server) handleCronDigest(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	if !s.window.InWindow(now) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"skipped": true,
			"reason":  "outside delivery window",
		})
		return
	}

	job, err := s.jobs.Enqueue(r.Context(), repository.NoTX, model.JobTypeDailyDigest)
	if err != nil {
		s.log.Error().Err(err).Msg("digest enqueue failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "enqueue failed"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"enqueued": true, "job_id": job.ID})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats snapshot failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "snapshot failed"})
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// bearerAuth guards a route with a static token. An empty configured token
// disables the route outright rather than leaving it open.
func (s *Server) bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				s.log.Error().Str("path", r.URL.Path).Msg("auth token not configured")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if parts[1] != token {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeTwiML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(twilio.Reply(body))
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestURL reconstructs the public URL Twilio signed. Behind a proxy the
// scheme comes from X-Forwarded-Proto.
func requestURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// Command server runs the DonorLink HTTP API. main wires configuration,
// stores, and services, then owns the process lifecycle; business logic lives
// in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"donorlink/internal/audit"
	"donorlink/internal/clinic"
	"donorlink/internal/donor"
	"donorlink/internal/matching"
	"donorlink/internal/notification"
	"donorlink/internal/notify"
	"donorlink/internal/platform/config"
	"donorlink/internal/platform/httpserver"
	"donorlink/internal/platform/logger"
	"donorlink/internal/platform/metrics"
	platformredis "donorlink/internal/platform/redis"
	"donorlink/internal/request"
	"donorlink/internal/token"
	httptransport "donorlink/internal/transport/http"
	"donorlink/pkg/requestcontext"
)

const (
	auditInboxSize = 256
	expirySweep    = time.Minute
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		donorStore        donor.Store        = donor.NewInMemoryStore()
		clinicStore       clinic.Store       = clinic.NewInMemoryStore()
		requestStore      request.Store      = request.NewInMemoryStore()
		notificationStore notification.Store = notification.NewInMemoryStore()
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		donorStore = donor.NewPostgresStore(pool)
		clinicStore = clinic.NewPostgresStore(pool)
		requestStore = request.NewPostgresStore(pool)
		notificationStore = notification.NewPostgresStore(pool)
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var dedupe notification.Dedupe = notification.NewLocalDedupe()
	redisClient, err := platformredis.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		dedupe = notification.NewRedisDedupe(redisClient)
		log.Info("using redis notification dedupe", "addr", cfg.RedisAddr)
	}

	var notifier notify.Notifier = notify.NewLogger(log)
	if cfg.MailjetPublicKey != "" && cfg.MailjetPrivateKey != "" {
		notifier = notify.NewMailjet(cfg.MailjetPublicKey, cfg.MailjetPrivateKey, cfg.MailSender)
		log.Info("using mailjet notifier", "sender", cfg.MailSender)
	} else {
		log.Warn("mailjet keys not set, notifications go to the log")
	}

	auditInbox := make(chan audit.Event, auditInboxSize)
	auditWorker := audit.NewWorker(audit.NewInMemoryStore(), auditInbox)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()
	emitter := audit.NewChannelEmitter(auditInbox, log)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)
	engine := matching.NewEngine(donorStore, log, m)
	dispatcher := notification.NewDispatcher(notificationStore, dedupe, notifier, log, m)

	requestService := request.NewService(requestStore, clinicStore, notificationStore,
		engine, dispatcher, notifier, log, m, emitter)

	router := httptransport.NewRouter(httptransport.Services{
		Donors:        donor.NewService(donorStore, log, m),
		Clinics:       clinic.NewService(clinicStore, log),
		Requests:      requestService,
		Notifications: notification.NewService(notificationStore, donorStore, log, m, emitter),
		Tokens:        tokens,
	}, log)

	go expireLoop(ctx, requestService, log)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("donorlink listening", "addr", cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// expireLoop periodically closes active requests whose deadline has passed.
func expireLoop(ctx context.Context, requests *request.Service, log *slog.Logger) {
	ticker := time.NewTicker(expirySweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx := requestcontext.WithTime(ctx, time.Now())
			if _, err := requests.ExpireOverdue(sweepCtx); err != nil {
				log.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

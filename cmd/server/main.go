package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"laurel/internal/achievement"
	"laurel/internal/achievement/handler"
	achievementmetrics "laurel/internal/achievement/metrics"
	"laurel/internal/achievement/service"
	"laurel/internal/achievement/store"
	"laurel/internal/platform/audit"
	"laurel/internal/platform/config"
	"laurel/internal/platform/httpserver"
	"laurel/internal/platform/logger"
	"laurel/internal/platform/middleware"
	platformredis "laurel/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Registry logic lives in internal/achievement.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ttl := store.DefaultTTLConfig()
	if cfg.TTLThreshold > 0 {
		ttl.Threshold = cfg.TTLThreshold
	}
	if cfg.TTLExtension > 0 {
		ttl.Extension = cfg.TTLExtension
	}

	var registryStore achievement.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		registryStore = store.NewRedis(redisClient.Client, ttl)
		log.Info("registry store: redis", "ttl_threshold", ttl.Threshold.String(), "ttl_extension", ttl.Extension.String())
	} else {
		registryStore = store.NewInMemory(ttl)
		log.Warn("registry store: in-memory; records will not survive restarts")
	}

	auditPublisher := audit.Publisher(audit.NewLogPublisher(log))
	if len(cfg.Audit.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Audit.Brokers, cfg.Audit.Topic)
		if err != nil {
			log.Error("kafka audit publisher failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		auditPublisher = kafkaPublisher
		log.Info("audit sink: kafka", "topic", cfg.Audit.Topic)
	}

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(achievementmetrics.New()),
		service.WithAuditPublisher(auditPublisher),
	}
	registry, err := achievement.NewService(registryStore, serviceOpts...)
	if err != nil {
		log.Error("service construction failed", "error", err.Error())
		os.Exit(1)
	}

	var handlerOpts []handler.Option
	if cfg.IssuerToken != "" {
		handlerOpts = append(handlerOpts, handler.WithIssuerGuard(middleware.RequireIssuerToken(cfg.IssuerToken, log)))
		log.Info("issuance gated by issuer token")
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	achievement.NewHandler(registry, log, handlerOpts...).Register(router)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting laurel registry", "addr", cfg.Addr)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

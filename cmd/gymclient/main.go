package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/gym_client/internal/cache"
	"github.com/fjod/gym_client/internal/config"
	"github.com/fjod/gym_client/internal/credentials"
	h "github.com/fjod/gym_client/internal/http"
	"github.com/fjod/gym_client/internal/notifications"
	"github.com/fjod/gym_client/internal/poller"
	"github.com/fjod/gym_client/internal/realtime"
	"github.com/fjod/gym_client/internal/realtime/wsclient"
	"github.com/fjod/gym_client/internal/session"
	"github.com/fjod/gym_client/pkg/circuitbreaker"
	"github.com/fjod/gym_client/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	creds, err := loadCredentials(cfg)
	if err != nil {
		log.Error("no usable credentials", "error", err)
		os.Exit(1)
	}

	wsCfg := wsclient.DefaultConfig()
	wsCfg.HandshakeTimeout = cfg.HandshakeWait
	conn := realtime.NewManager(cfg.HubURL, creds, wsclient.Factory(wsCfg),
		realtime.WithLogger(log),
		realtime.WithReconnectPolicy(realtime.BackoffPolicy{
			InitialDelay: cfg.ReconnectInitialDelay,
			MaxDelay:     cfg.ReconnectMaxDelay,
			MaxRetries:   cfg.ReconnectMaxRetries,
		}),
	)

	opts := []session.Option{
		session.WithLogger(log),
		session.WithNotificationStore(notifications.NewStore(
			notifications.WithCapacity(cfg.NotificationCapacity),
			notifications.WithDedupeWindow(cfg.DedupeWindow),
		)),
	}

	var routerOpts []h.RouterOption
	ctx := context.Background()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, cart cache degraded", "error", err)
		}
		breakerCfg := circuitbreaker.DefaultConfig()
		breakerCfg.Ignore = []error{cache.ErrCacheMiss}
		breaker := circuitbreaker.New("cart-cache", breakerCfg, log)
		cartCache := cache.NewGuarded(cache.NewRedisCache(redisClient, cfg.CartTTL), breaker)
		opts = append(opts, session.WithCartCache(cartCache))
		routerOpts = append(routerOpts, h.WithComponentStatus("cart_cache", breaker.State))
	}

	sess := session.New(creds, conn, opts...)

	startCtx, cancelStart := context.WithTimeout(ctx, cfg.RequestTimeout)
	if err := sess.Init(startCtx); err != nil {
		log.Warn("starting without push connection", "error", err)
	}
	cancelStart()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	if len(cfg.KafkaBrokers) > 0 {
		p := poller.NewPoller(sess, log, cfg.CheckoutTopic, cfg.ConsumerGroup, cfg.KafkaBrokers...)
		defer p.Close()
		go p.Run(pollCtx)
		log.Info("checkout poller started", "topic", cfg.CheckoutTopic)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(h.NewRouter(sess, cfg.RequestTimeout, log, routerOpts...), "gym-client"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("session API listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	stopPolling()
	if err := sess.Teardown(shutdownCtx); err != nil {
		log.Warn("session teardown", "error", err)
	}
	log.Info("stopped")
}

func loadCredentials(cfg *config.Config) (*credentials.Static, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN is not set")
	}
	if cfg.UserID != "" {
		return credentials.NewStatic(cfg.UserID, cfg.AccessToken), nil
	}
	return credentials.FromJWT(cfg.AccessToken)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chiya-order-service/internal/config"
	httpapi "chiya-order-service/internal/http"
	"chiya-order-service/internal/logger"
	"chiya-order-service/internal/queue"
	"chiya-order-service/internal/storage"
	"chiya-order-service/internal/store"
	"chiya-order-service/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	st, err := store.Open(cfg.DataFile, log)
	if err != nil {
		log.Fatal("state rehydrate failed", zap.String("file", cfg.DataFile), zap.Error(err))
	}
	defer st.Flush()
	if cfg.Env == "development" {
		st.SeedDemoMenu()
	}

	ctx := context.Background()

	var objects *storage.ObjectStore
	if cfg.ObjectStoreConfigured() {
		objects, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store init failed", zap.Error(err))
			}
			log.Warn("object store init failed; uploads disabled", zap.Error(err))
			objects = nil
		}
	} else {
		log.Info("object store disabled (no OBJECT_STORE_* configuration)")
	}

	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := qc.EnsureExchange(queue.EventsExchange); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq exchange failed", zap.Error(err))
				}
				log.Warn("rabbitmq exchange failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}

		if qc != nil {
			defer qc.Close()
			log.Info("rabbitmq events enabled", zap.String("exchange", queue.EventsExchange))

			st.OnEvent(func(event store.Event) {
				payload := map[string]any{
					"type":  string(event.Type),
					"order": event.Order,
				}
				if err := qc.PublishJSON(context.Background(), queue.EventsExchange, string(event.Type), payload); err != nil {
					log.Error("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
				}
			})
		}
	} else {
		log.Info("rabbitmq events disabled (RABBITMQ_URL is empty)")
	}

	wsServer := ws.New(st, log, cfg)
	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(st, log, cfg, objects, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("order api ready", zap.String("base", "/api"))
		log.Info("order ws ready", zap.String("base", "/ws"))
		log.Info("chiya order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}

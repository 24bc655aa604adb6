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

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/vehicle-quality/internal/config"
	"github.com/ukydev/vehicle-quality/internal/db"
	"github.com/ukydev/vehicle-quality/internal/duration"
	"github.com/ukydev/vehicle-quality/internal/handlers"
	"github.com/ukydev/vehicle-quality/internal/ingest"
	"github.com/ukydev/vehicle-quality/internal/middleware"
	"github.com/ukydev/vehicle-quality/internal/tracking"
)

const shutdownTimeout = 10 * time.Second

func setupLogging(cfg config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func newRouter(cfg config.Config, svc handlers.VehicleService) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.NewRateLimitMiddleware().RateLimit(cfg.RateLimit, cfg.RateWindowSec))

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	handlers.NewVehicleHandler(svc).Register(r)
	return r
}

func run(ctx context.Context, cfg config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := db.ConnectMongo(connectCtx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}()
	log.WithField("db", cfg.MongoDB).Info("Connected to MongoDB")

	store := db.NewStore(client, cfg.MongoDB)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	svc := tracking.NewService(store.Vehicles, store.Timeline,
		tracking.WithFormatter(duration.Formatter{Locale: duration.LocaleByName(cfg.DurationLocale)}))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.MQTTEnabled() {
		sub := ingest.NewSubscriber(ingest.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			Topic:     cfg.MQTTTopic,
			ClientID:  cfg.MQTTClientID,
		}, svc)
		g.Go(func() error { return sub.Run(gctx) })
	} else {
		log.Info("MQTT_BROKER_URL not set, station feed disabled")
	}

	return g.Wait()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
	log.Info("Server stopped")
}

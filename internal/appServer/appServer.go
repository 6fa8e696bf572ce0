package appServer

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anna199/TeachTogether/config"
	repository "github.com/anna199/TeachTogether/internal/database/mongo"
	cache "github.com/anna199/TeachTogether/internal/database/redis"
	"github.com/anna199/TeachTogether/internal/service"
	"github.com/anna199/TeachTogether/internal/transport"

	"github.com/anna199/TeachTogether/pkg/kafka"
	"github.com/anna199/TeachTogether/pkg/mongo"
	"github.com/anna199/TeachTogether/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		ErrorLog:          log.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewServer wires the stores, services and routes, serves until SIGINT or
// SIGTERM, then drains requests and closes the store connections.
func NewServer(cfg *config.Config) {
	configureLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	store, err := mongo.NewMongoDB(ctx, &cfg.Mongo)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(store.Database)
	userRepo := repository.NewUserRepository(store.Database)

	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		logrus.Fatalf("Failed to create event indexes: %v", err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logrus.Fatalf("Failed to create user indexes: %v", err)
	}

	// Optional event cache
	var eventCache service.EventCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis: %v. Continuing without cache...", err)
		} else {
			defer redisClient.Close()
			eventCache = cache.NewEventCache(redisClient, cfg.Redis.CacheTTL)
			logrus.Info("Event cache initialized")
		}
	}

	// Optional lifecycle feed
	var publisher service.LifecyclePublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = service.NewKafkaAdapter(producer)
		logrus.Info("Lifecycle publisher initialized")
	}

	// Initialize services
	eventService := service.NewEventService(eventRepo, eventCache, publisher)
	registrationService := service.NewRegistrationService(eventRepo, eventCache, publisher)

	// Initialize handlers
	eventHandler := transport.NewEventHandler(eventService)
	registrationHandler := transport.NewRegistrationHandler(registrationService)
	healthHandler := transport.NewHealthHandler(store)

	// Setup HTTP server
	if cfg.IsProduction() || cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(eventHandler, registrationHandler, healthHandler, cfg.Server.RequestTimeout)
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":    cfg.GetServerAddress(),
		"version": cfg.Server.AppVersion,
	}).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Info("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
	if err := store.Close(shutdownCtx); err != nil {
		logrus.Errorf("error occured on database connection close: %s", err.Error())
	}
}

func configureLogging(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logrus.WithField("level", cfg.Log.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

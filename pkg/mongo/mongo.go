package mongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/anna199/TeachTogether/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Store owns the process-wide client and the application database.
type Store struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects and pings, retrying up to cfg.ConnectAttempts times.
func NewMongoDB(ctx context.Context, cfg *config.MongoConfig) (*Store, error) {
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		logrus.WithFields(logrus.Fields{
			"attempt":  i,
			"attempts": attempts,
			"database": cfg.Database,
		}).Info("Connecting to MongoDB")

		client, err := connect(ctx, cfg)
		if err == nil {
			logrus.WithField("database", cfg.Database).Info("Successfully connected to MongoDB")
			return &Store{Client: client, Database: client.Database(cfg.Database)}, nil
		}

		lastErr = err
		logrus.WithError(err).Warn("MongoDB connection attempt failed")

		if i < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.RetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", attempts, lastErr)
}

func connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetServerMonitor(connectionStateMonitor())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}
	return client, nil
}

// connectionStateMonitor logs once when heartbeats start failing and once
// when they recover.
func connectionStateMonitor() *event.ServerMonitor {
	var down atomic.Bool

	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			if down.CompareAndSwap(false, true) {
				logrus.WithFields(logrus.Fields{
					"connection_id": e.ConnectionID,
					"error":         e.Failure,
				}).Error("MongoDB disconnected")
			}
		},
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			if down.CompareAndSwap(true, false) {
				logrus.WithField("connection_id", e.ConnectionID).Info("MongoDB reconnected")
			}
		},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.Client.Disconnect(ctx); err != nil {
		return err
	}
	logrus.Info("MongoDB connection closed")
	return nil
}

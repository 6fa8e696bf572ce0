package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	SendMessage(ctx context.Context, key string, message any) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer returns a writer for topic. When no broker answers it falls
// back to a producer that only logs, so the API keeps serving without Kafka.
func NewProducer(brokers []string, topic string) Producer {
	log := logrus.WithFields(logrus.Fields{"brokers": brokers, "topic": topic})
	if len(brokers) == 0 {
		log.Warn("No Kafka brokers configured, using logging producer")
		return &logProducer{topic: topic}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.WithError(err).Warn("Kafka connection failed, using logging producer")
		return &logProducer{topic: topic}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		log.WithError(err).Debug("Could not create topic (might already exist)")
	}

	log.Info("Connected to Kafka")
	return &kafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *kafkaProducer) SendMessage(ctx context.Context, key string, message any) error {
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

type logProducer struct {
	topic string
}

func (p *logProducer) SendMessage(_ context.Context, key string, message any) error {
	logrus.WithFields(logrus.Fields{
		"topic":   p.topic,
		"key":     key,
		"message": message,
	}).Debug("Kafka disabled, message dropped")
	return nil
}

func (p *logProducer) Close() error {
	return nil
}

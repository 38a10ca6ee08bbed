package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"currencyrate-service/internal/app/currencyrate/entity"
	"currencyrate-service/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "currencyrate-service"

// KafkaProducer публикует события модуля в Kafka
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Second,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishRatesUpdated отправляет событие об обновлении курсов.
// Ключ сообщения - базовая валюта, чтобы события одного магазина шли в одну партицию
func (p *KafkaProducer) PublishRatesUpdated(ctx context.Context, event *entity.RatesUpdatedEvent) error {
	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)

	value, err := json.Marshal(event)
	if err != nil {
		timer.Error()
		return fmt.Errorf("failed to marshal rates updated event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.BaseIso),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

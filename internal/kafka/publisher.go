package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orders_etl/internal/config"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=publisher.go -destination=./mocks/publisher_mock.go -package=mocks Publisher

// Report - итог успешной загрузки, который уходит в Kafka после коммита.
type Report struct {
	RunID      string         `json:"run_id"`
	InputPath  string         `json:"input_path"`
	Counts     map[string]int `json:"counts"`
	Warnings   int            `json:"quality_warnings"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Publisher отправляет отчеты о загрузке.
type Publisher interface {
	Publish(ctx context.Context, report Report) error
	Close() error
}

// messageWriter - часть kafka.Writer, которой пользуется kafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	tracer trace.Tracer
}

// NewPublisher создает продюсера отчетов для топика из конфигурации.
func NewPublisher(cfg config.KafkaConfig) Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer)
}

func newPublisher(w messageWriter) *kafkaPublisher {
	return &kafkaPublisher{writer: w, tracer: otel.Tracer("kafka-publisher")}
}

// Publish сериализует отчет и пишет его с ключом run_id.
func (p *kafkaPublisher) Publish(ctx context.Context, report Report) error {
	ctx, span := p.tracer.Start(ctx, "Publisher.Publish")
	defer span.End()

	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("ошибка сериализации отчета: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.RunID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "X-Input-Path", Value: []byte(report.InputPath)},
		},
	})
	if err != nil {
		return fmt.Errorf("ошибка отправки отчета в Kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/approach-chart-etl/internal/config"
	"github.com/couchcryptid/approach-chart-etl/internal/domain"
)

// Writer publishes airport and approach rows to their Kafka topics.
// It implements pipeline.Loader.
type Writer struct {
	airports   *kafkago.Writer
	approaches *kafkago.Writer
	logger     *slog.Logger
}

// NewWriter creates Kafka producers for the airport and approach topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	newTopicWriter := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.KafkaBrokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		}
	}
	return &Writer{
		airports:   newTopicWriter(cfg.KafkaAirportTopic),
		approaches: newTopicWriter(cfg.KafkaApproachTopic),
		logger:     logger,
	}
}

// LoadAirports serializes and publishes the airport directory in a single
// WriteMessages call.
func (w *Writer) LoadAirports(ctx context.Context, airports []domain.Airport) error {
	if len(airports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(airports))
	for i := range airports {
		msg, err := airportMessage(airports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.airports.WriteMessages(ctx, msgs...)
}

// LoadApproaches serializes and publishes the resolved approach set in a
// single WriteMessages call.
func (w *Writer) LoadApproaches(ctx context.Context, approaches []domain.ResolvedApproach) error {
	if len(approaches) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(approaches))
	for i := range approaches {
		msg, err := approachMessage(approaches[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.approaches.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return errors.Join(w.airports.Close(), w.approaches.Close())
}

// airportMessage marshals an airport row, keyed by its identifier so
// republished cycles compact per airport.
func airportMessage(a domain.Airport) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize airport: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Identifier),
		Value: data,
	}, nil
}

// approachMessage marshals a resolved approach, keyed by airport and
// approach identifier so the same procedure always lands on one partition.
func approachMessage(r domain.ResolvedApproach) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize approach: %w", err)
	}
	resolved := "false"
	if r.Resolved {
		resolved = "true"
	}
	return kafkago.Message{
		Key:   []byte(r.AirportIdentifier + "/" + r.ApproachIdentifier),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "resolved", Value: []byte(resolved)},
			{Key: "processed_at", Value: []byte(r.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

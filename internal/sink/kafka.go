package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"etlgen/internal/model"
)

const kafkaBatchSize = 500

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaWriter publishes every row as one JSON message. Each dataset maps
// to its own topic; the key is the row position so a compacted topic
// keeps one message per row.
type KafkaWriter struct {
	writer kafkaMessageWriter
	topics map[string]string
}

// NewKafkaWriter creates a Kafka writer. topics maps dataset name to topic.
func NewKafkaWriter(brokers []string, topics map[string]string) *KafkaWriter {
	return &KafkaWriter{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}, topics: topics}
}

// NewKafkaWriterWith is only for tests to inject a fake writer.
func NewKafkaWriterWith(w kafkaMessageWriter, topics map[string]string) *KafkaWriter {
	return &KafkaWriter{writer: w, topics: topics}
}

func (k *KafkaWriter) Name() string { return "kafka" }

func (k *KafkaWriter) Location(dataset string) string {
	return "kafka://" + k.topics[dataset]
}

func (k *KafkaWriter) Write(ctx context.Context, dataset string, records []model.Record) error {
	topic, ok := k.topics[dataset]
	if !ok || topic == "" {
		return fmt.Errorf("no kafka topic configured for dataset %q", dataset)
	}

	batch := make([]kafka.Message, 0, kafkaBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := k.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("publish to kafka topic %s: %w", topic, err)
		}
		batch = batch[:0]
		return nil
	}

	for i := range records {
		b, err := json.Marshal(jsonRow(records[i]))
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", i, err)
		}
		batch = append(batch, kafka.Message{
			Topic:   topic,
			Key:     []byte(dataset + "/" + strconv.Itoa(i)),
			Value:   b,
			Headers: []kafka.Header{{Key: "dataset", Value: []byte(dataset)}},
		})
		if len(batch) == kafkaBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Close releases the underlying kafka.Writer, if any.
func (k *KafkaWriter) Close() error {
	if w, ok := k.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher streams audit events to a Kafka topic. Events are keyed by
// user so per-user issuance history stays ordered within a partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects a producer to the given brokers. The caller
// owns Close.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: payload,
	}
	// Synchronous produce: issuance is rare relative to reads and the trail
	// must not silently drop events.
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the producer.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

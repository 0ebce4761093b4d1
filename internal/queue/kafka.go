package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/emrgen/shortpage/internal/model"
	"github.com/sirupsen/logrus"
)

var _ ClickQueue = (*KafkaClickQueue)(nil)

// KafkaClickQueue publishes click events to a kafka topic. Delivery is
// best-effort, failed deliveries are logged and dropped like every other
// analytics failure.
type KafkaClickQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaClickQueue(brokers, topic string) (*KafkaClickQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	if topic == "" {
		topic = ClickTopic
	}

	q := &KafkaClickQueue{producer: producer, topic: topic}
	go q.drainEvents()

	return q, nil
}

func (q *KafkaClickQueue) Publish(ctx context.Context, click *model.ClickEvent) error {
	data, err := json.Marshal(click)
	if err != nil {
		return err
	}

	return q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &q.topic, Partition: kafka.PartitionAny},
		Key:            []byte(click.BlockID),
		Value:          data,
	}, nil)
}

func (q *KafkaClickQueue) Close() {
	q.producer.Flush(5000)
	q.producer.Close()
}

// drainEvents consumes delivery reports so the producer channel never fills.
func (q *KafkaClickQueue) drainEvents() {
	for event := range q.producer.Events() {
		if m, ok := event.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			logrus.Errorf("click event delivery failed: %v", m.TopicPartition.Error)
		}
	}
}

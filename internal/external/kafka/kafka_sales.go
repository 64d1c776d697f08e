package kafka

import (
	"context"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
)

type SalesReader struct {
	reader *kafka.Reader
}

func NewSalesReader(topic string) (reader *SalesReader, err error) {
	// config
	kafkaurl := os.Getenv("KAFKA_SALES_URL")
	if kafkaurl == "" {
		return nil, fmt.Errorf("env KAFKA_SALES_URL is not set")
	}
	kafkaport := os.Getenv("KAFKA_SALES_PORT")
	if kafkaport == "" {
		return nil, fmt.Errorf("env KAFKA_SALES_PORT is not set")
	}

	kafkaconfig := kafka.ReaderConfig{
		Brokers: []string{kafkaurl + ":" + kafkaport},
		Topic:   topic,
		GroupID: "sales_loyalty",
	}
	return &SalesReader{kafka.NewReader(kafkaconfig)}, nil
}

// GetNewMessage blocks for the next completed-sale event.
func (k *SalesReader) GetNewMessage(ctx context.Context) (saleJson string, err error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return "", err
	}
	return string(msg.Value), nil
}

func (k *SalesReader) CloseReader() {
	k.reader.Close()
}

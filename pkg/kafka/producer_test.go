package kafka

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/inverted-index/pkg/config"
)

func TestEncode(t *testing.T) {
	messages, err := encode([]Event{
		{Key: "sat", Value: map[string]int{"document_count": 2}},
		{Key: "cat", Value: []int{0, 2}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if string(messages[0].Key) != "sat" || string(messages[0].Value) != `{"document_count":2}` {
		t.Fatalf("unexpected first message %q=%q", messages[0].Key, messages[0].Value)
	}
	if string(messages[1].Value) != `[0,2]` {
		t.Fatalf("unexpected second value %q", messages[1].Value)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := encode([]Event{{Key: "x", Value: make(chan int)}}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestPublishBatchEmptyIsNoop(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:0"}}, "query-events")
	defer p.Close()
	if err := p.PublishBatch(context.Background(), nil); err != nil {
		t.Fatalf("PublishBatch(nil): %v", err)
	}
}

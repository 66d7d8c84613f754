package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type storeStub struct {
	docs   []*EventDocument
	sent   []string
	failed []string
}

func (s *storeStub) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	doc := s.docs[0]
	s.docs = s.docs[1:]
	return doc, nil
}

func (s *storeStub) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *storeStub) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	s.failed = append(s.failed, id)
	return nil
}

type producerStub struct {
	topic   string
	payload []byte
	err     error
}

func (p *producerStub) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.topic = topic
	p.payload = payload
	return nil
}

func testDoc() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "booking.confirmed",
		Aggregate:  "bk-1",
		Payload:    []byte(`{"BookingID":"bk-1"}`),
		OccurredAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessOncePublishesCloudEvent(t *testing.T) {
	store := &storeStub{docs: []*EventDocument{testDoc()}}
	producer := &producerStub{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "staging."}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if producer.topic != "staging.booking.events.v1" {
		t.Errorf("topic = %q, want staging.booking.events.v1", producer.topic)
	}
	var evt map[string]any
	if err := json.Unmarshal(producer.payload, &evt); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if evt["type"] != "booking.confirmed.v1" {
		t.Errorf("type = %v", evt["type"])
	}
	if evt["source"] != "app://staybook" {
		t.Errorf("source = %v", evt["source"])
	}
	if len(store.sent) != 1 || store.sent[0] != "evt-1" {
		t.Errorf("sent = %v, want [evt-1]", store.sent)
	}
}

func TestProcessOnceMarksFailureForRetry(t *testing.T) {
	store := &storeStub{docs: []*EventDocument{testDoc()}}
	producer := &producerStub{err: errors.New("broker down")}
	w := &Worker{Store: store, Producer: producer}

	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
	if len(store.failed) != 1 {
		t.Fatalf("failed = %v, want one entry", store.failed)
	}
	if len(store.sent) != 0 {
		t.Fatalf("sent = %v, want empty", store.sent)
	}
}

func TestProcessOnceIdleQueue(t *testing.T) {
	w := &Worker{Store: &storeStub{}, Producer: &producerStub{}}
	if err := w.processOnce(context.Background()); err != nil {
		t.Fatalf("processOnce: %v", err)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("got %v, want ErrWorkerNotConfigured", err)
	}
}

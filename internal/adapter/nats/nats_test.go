package nats_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	natsadapter "github.com/Strob0t/TaskForge/internal/adapter/nats"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

func connect(t *testing.T) *natsadapter.Queue {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}
	q, err := natsadapter.Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	q := connect(t)
	ctx := context.Background()

	received := make(chan []byte, 1)
	cancel, err := q.Subscribe(ctx, messagequeue.SubjectTaskCreated, func(_ context.Context, _ string, data []byte) error {
		received <- data
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	payload, _ := json.Marshal(messagequeue.TaskCreatedPayload{
		TaskID:     "t1",
		Name:       "review",
		CreateTime: time.Now().UTC(),
	})
	if err := q.Publish(ctx, messagequeue.SubjectTaskCreated, payload); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case data := <-received:
		var got messagequeue.TaskCreatedPayload
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.TaskID != "t1" {
			t.Errorf("task id = %q, want t1", got.TaskID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPublishRejectsMalformedPayload(t *testing.T) {
	q := connect(t)
	err := q.Publish(context.Background(), messagequeue.SubjectTaskCreated, []byte(`{bad json`))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestIsConnected(t *testing.T) {
	q := connect(t)
	if !q.IsConnected() {
		t.Error("expected connected queue")
	}
}

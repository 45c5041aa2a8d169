package queue

import (
	"encoding/json"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if err := client.EnqueueCustomEmail(CustomEmailPayload{To: "a@example.com"}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestOrderEmailTaskPayload(t *testing.T) {
	task, err := NewOrderStatusEmailTask(OrderEmailPayload{OrderID: 7, StatusID: 3})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskOrderStatusEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload OrderEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.OrderID != 7 || payload.StatusID != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 5 || cfg.Queues[CriticalQueue] != 2 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

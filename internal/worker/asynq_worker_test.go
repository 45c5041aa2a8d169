package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ICMM2025/icmm-server/internal/queue"
	"github.com/ICMM2025/icmm-server/internal/service"

	"github.com/hibiken/asynq"
)

type orderMailerStub struct {
	calls         int
	orderID       uint
	statusChanged bool
	err           error
}

func (s *orderMailerStub) SendOrderEmail(orderID uint, statusChanged bool) error {
	s.calls++
	s.orderID = orderID
	s.statusChanged = statusChanged
	return s.err
}

type customMailerStub struct {
	to, subject, body string
	err               error
}

func (s *customMailerStub) SendCustomEmail(toEmail, subject, body string) error {
	s.to, s.subject, s.body = toEmail, subject, body
	return s.err
}

func mustTask(t *testing.T) func(*asynq.Task, error) *asynq.Task {
	t.Helper()
	return func(task *asynq.Task, err error) *asynq.Task {
		t.Helper()
		if err != nil {
			t.Fatalf("build task failed: %v", err)
		}
		return task
	}
}

func TestHandleOrderEmails(t *testing.T) {
	stub := &orderMailerStub{}
	consumer := &Consumer{orders: stub}

	task := mustTask(t)(queue.NewOrderCreatedEmailTask(queue.OrderEmailPayload{OrderID: 7}))
	if err := consumer.handleOrderCreatedEmail(context.Background(), task); err != nil {
		t.Fatalf("created email failed: %v", err)
	}
	if stub.orderID != 7 || stub.statusChanged {
		t.Fatalf("unexpected call: %+v", stub)
	}

	task = mustTask(t)(queue.NewOrderStatusEmailTask(queue.OrderEmailPayload{OrderID: 8, StatusID: 5}))
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("status email failed: %v", err)
	}
	if stub.orderID != 8 || !stub.statusChanged {
		t.Fatalf("unexpected call: %+v", stub)
	}

	task = mustTask(t)(queue.NewOrderStatusEmailTask(queue.OrderEmailPayload{}))
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("zero order id should be skipped, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("zero order id must not send, calls=%d", stub.calls)
	}
}

func TestHandleOrderEmailBadPayloadSkipsRetry(t *testing.T) {
	consumer := &Consumer{orders: &orderMailerStub{}}
	err := consumer.handleOrderCreatedEmail(context.Background(), asynq.NewTask(queue.TaskOrderCreatedEmail, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestClassifySendError(t *testing.T) {
	transient := errors.New("smtp timeout")
	cases := []struct {
		name      string
		err       error
		wantNil   bool
		wantSkip  bool
		wantRetry bool
	}{
		{name: "ok", err: nil, wantNil: true},
		{name: "order gone", err: service.ErrOrderNotFound, wantNil: true},
		{name: "disabled", err: service.ErrEmailServiceDisabled, wantNil: true},
		{name: "not configured", err: service.ErrEmailServiceNotConfigured, wantNil: true},
		{name: "invalid email", err: service.ErrInvalidEmail, wantSkip: true},
		{name: "rejected", err: service.ErrEmailRecipientRejected, wantSkip: true},
		{name: "transient", err: transient, wantRetry: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifySendError(tc.err, "order_id", 1)
			switch {
			case tc.wantNil:
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
			case tc.wantSkip:
				if !errors.Is(got, asynq.SkipRetry) {
					t.Fatalf("expected SkipRetry, got %v", got)
				}
			case tc.wantRetry:
				if !errors.Is(got, transient) || errors.Is(got, asynq.SkipRetry) {
					t.Fatalf("expected retryable error, got %v", got)
				}
			}
		})
	}
}

func TestHandleCustomEmail(t *testing.T) {
	stub := &customMailerStub{}
	consumer := &Consumer{custom: stub}
	task := mustTask(t)(queue.NewCustomEmailTask(queue.CustomEmailPayload{To: "runner@example.com", Subject: "Bib", Text: "see you"}))
	if err := consumer.handleCustomEmail(context.Background(), task); err != nil {
		t.Fatalf("custom email failed: %v", err)
	}
	if stub.to != "runner@example.com" || stub.subject != "Bib" || stub.body != "see you" {
		t.Fatalf("unexpected call: %+v", stub)
	}
}

func TestRegisterRoutesAllTasks(t *testing.T) {
	mux := asynq.NewServeMux()
	stub := &orderMailerStub{}
	(&Consumer{orders: stub, custom: &customMailerStub{}}).Register(mux)

	task := mustTask(t)(queue.NewOrderCreatedEmailTask(queue.OrderEmailPayload{OrderID: 3}))
	if err := mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process task failed: %v", err)
	}
	if stub.orderID != 3 {
		t.Fatalf("task not routed to consumer")
	}
}

type missingQRStub struct {
	ids   []uint
	err   error
	grace time.Duration
}

func (s *missingQRStub) FindOrdersMissingQR(grace time.Duration) ([]uint, error) {
	s.grace = grace
	return s.ids, s.err
}

func TestReportMissingQR(t *testing.T) {
	stub := &missingQRStub{ids: []uint{3, 9}}
	if got := (&Consumer{audit: stub}).reportMissingQR(); got != 2 {
		t.Fatalf("expected 2 orders reported, got %d", got)
	}
	if stub.grace != missingQRGrace {
		t.Fatalf("unexpected grace: %v", stub.grace)
	}
	if got := (&Consumer{audit: &missingQRStub{err: errors.New("db down")}}).reportMissingQR(); got != 0 {
		t.Fatalf("scan failure should report 0, got %d", got)
	}
	if got := (&Consumer{}).reportMissingQR(); got != 0 {
		t.Fatalf("consumer without auditor should report 0, got %d", got)
	}
}

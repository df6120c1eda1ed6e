package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"github.com/nats-io/nats.go/jetstream"
)

type published struct {
	subject string
	data    []byte
	opts    int
}

func newTestPublisher(sent *[]published, err error) *NatsPublisher {
	return &NatsPublisher{
		prefix: "stepflow.runs",
		publish: func(ctx context.Context, subj string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			if err != nil {
				return nil, err
			}
			*sent = append(*sent, published{subject: subj, data: data, opts: len(opts)})
			return &jetstream.PubAck{Stream: StreamName, Sequence: uint64(len(*sent))}, nil
		},
	}
}

func TestNatsPublisher_Subject(t *testing.T) {
	p := &NatsPublisher{prefix: "stepflow.runs"}
	tests := map[string]string{
		"3f1c2a":     "stepflow.runs.3f1c2a",
		"a.b":        "stepflow.runs.a_b",
		"with space": "stepflow.runs.with_space",
		"*>":         "stepflow.runs.__",
	}
	for id, want := range tests {
		if got := p.Subject(id); got != want {
			t.Errorf("Subject(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestNatsPublisher_PublishEncodesRun(t *testing.T) {
	var sent []published
	p := newTestPublisher(&sent, nil)
	rec := &domain.RunRecord{
		ID:         "run-1",
		WorkflowID: "wf-1",
		ExecutedSteps: []domain.StepResult{
			{Name: "Send Email", Type: domain.StepTypeSendEmail, Status: domain.StepStatusSuccess},
		},
		UpdatedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}

	if err := p.Publish(context.Background(), rec); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("Expected one message, got %d", len(sent))
	}
	if sent[0].subject != "stepflow.runs.wf-1" {
		t.Errorf("Unexpected subject %q", sent[0].subject)
	}
	if sent[0].opts != 1 {
		t.Errorf("Expected the run id as message id option")
	}
	var decoded domain.RunRecord
	if err := json.Unmarshal(sent[0].data, &decoded); err != nil {
		t.Fatalf("Message is not a run record: %v", err)
	}
	if decoded.ID != "run-1" || decoded.ExecutedSteps[0].Status != domain.StepStatusSuccess {
		t.Errorf("Unexpected payload %+v", decoded)
	}
}

func TestNatsPublisher_PublishError(t *testing.T) {
	var sent []published
	cause := errors.New("no responders")
	p := newTestPublisher(&sent, cause)

	err := p.Publish(context.Background(), &domain.RunRecord{ID: "run-1", WorkflowID: "wf-1"})
	if !errors.Is(err, cause) {
		t.Errorf("Expected wrapped publish error, got %v", err)
	}
}

func TestNopPublisher(t *testing.T) {
	if err := (NopPublisher{}).Publish(context.Background(), &domain.RunRecord{}); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestNatsPublisher_CloseWithoutConnection(t *testing.T) {
	if err := (&NatsPublisher{}).Close(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

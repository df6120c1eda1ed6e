// Package notify publishes recorded runs to interested listeners.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const StreamName = "STEPFLOW_RUNS"

type publishFunc func(ctx context.Context, subj string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)

// NatsPublisher sends every recorded run as JSON to a JetStream subject of
// the form <prefix>.<workflowId>.
type NatsPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	prefix  string
	publish publishFunc
}

// NewNatsPublisher connects to the server at natsURL and makes sure the run
// stream exists.
func NewNatsPublisher(ctx context.Context, natsURL string, prefix string) (*NatsPublisher, error) {
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}
	nc, err := nats.Connect(
		natsURL,
		nats.Name("stepflow"),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream instance: %w", err)
	}

	p := &NatsPublisher{nc: nc, js: js, prefix: prefix, publish: js.Publish}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	slog.Info("Publishing runs to NATS", "url", natsURL, "stream", StreamName, "subjects", prefix+".>")
	return p, nil
}

func (p *NatsPublisher) ensureStream(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{p.prefix + ".>"},
		Storage:  jetstream.FileStorage,
	}
	stream, err := p.js.Stream(ctx, StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := p.js.CreateStream(ctx, cfg); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
		}
		return nil
	}
	if err != nil || stream == nil {
		return fmt.Errorf("failed to get stream %s info: %w", StreamName, err)
	}
	if _, err := p.js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", StreamName, err)
	}
	return nil
}

// Subject returns the subject a run of the given workflow is published to.
func (p *NatsPublisher) Subject(workflowID string) string {
	// NATS tokens cannot hold separators or wildcards
	token := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(workflowID)
	return p.prefix + "." + token
}

func (p *NatsPublisher) Publish(ctx context.Context, rec *domain.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", rec.ID, err)
	}
	subject := p.Subject(rec.WorkflowID)
	ack, err := p.publish(ctx, subject, data, jetstream.WithMsgID(rec.ID))
	if err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}
	slog.DebugContext(ctx, "Published run", "run_id", rec.ID, "subject", subject, "seq", ack.Sequence)
	return nil
}

// Close drains pending publishes and closes the connection.
func (p *NatsPublisher) Close() error {
	if p.nc != nil && !p.nc.IsClosed() {
		return p.nc.Drain()
	}
	return nil
}

// NopPublisher discards runs. It is used when no NATS server is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, rec *domain.RunRecord) error { return nil }

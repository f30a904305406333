// Package notify publishes build events so other services can react to a
// freshly rendered site.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/vaultmark/internal/diagnostics"
	"git.home.luguber.info/inful/vaultmark/internal/foundation/errors"
	"git.home.luguber.info/inful/vaultmark/internal/logfields"
	"git.home.luguber.info/inful/vaultmark/internal/site"
)

// BuildEvent describes one finished build.
type BuildEvent struct {
	RunID         string    `json:"run_id"`
	Trigger       string    `json:"trigger"`
	Timestamp     time.Time `json:"timestamp"`
	Documents     int       `json:"documents"`
	Written       int       `json:"written"`
	Unchanged     int       `json:"unchanged"`
	Unpublished   int       `json:"unpublished"`
	Images        int       `json:"images"`
	Failed        int       `json:"failed"`
	BrokenLinks   int       `json:"broken_links"`
	EmbedFailures int       `json:"embed_failures"`
	DurationMS    int64     `json:"duration_ms"`
}

// NewBuildEvent summarizes a site build and the diagnostics it produced.
func NewBuildEvent(trigger string, r site.Report, diags []diagnostics.Diagnostic) BuildEvent {
	ev := BuildEvent{
		RunID:       r.RunID,
		Trigger:     trigger,
		Timestamp:   time.Now().UTC(),
		Documents:   r.Documents,
		Written:     r.Written,
		Unchanged:   r.Unchanged,
		Unpublished: r.Unpublished,
		Images:      r.Images,
		Failed:      r.Failed(),
		DurationMS:  r.Duration.Milliseconds(),
	}
	for _, d := range diags {
		switch d.Kind {
		case diagnostics.KindBrokenLink:
			ev.BrokenLinks++
		case diagnostics.KindEmbedLoadFailed, diagnostics.KindEmbedParseFailed:
			ev.EmbedFailures++
		}
	}
	return ev
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, ev BuildEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BuildEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes JSON events on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if subject == "" {
		return nil, errors.ConfigError("event subject is required").Build()
	}
	nc, err := nats.Connect(url, nats.Name("vaultmark"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: nc, subject: subject, logger: logger}, nil
}

// Publish sends ev and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal build event").Build()
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "publish build event").
			WithContext("subject", p.subject).Retryable().Build()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "flush build event").
			WithContext("subject", p.subject).Retryable().Build()
	}
	p.logger.Debug("Published build event", logfields.RunID(ev.RunID), logfields.Event(ev.Trigger))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

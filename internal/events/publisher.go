// Package events publishes survey lifecycle events to NATS. The bus is
// optional: a nil *Publisher is safe to call, so the service runs
// unchanged when NATS is not configured.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectCustomerCompleted = "canvass.customer.completed"
	SubjectSummaryGenerated  = "canvass.summary.generated"
)

// CustomerCompleted is emitted when a customer finishes all interview
// blocks for a survey.
type CustomerCompleted struct {
	SurveyUUID   string    `json:"survey_uuid"`
	CustomerUUID string    `json:"customer_uuid"`
	SessionID    string    `json:"session_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// SummaryGenerated is emitted after every synthesis attempt, carrying
// the outcome so downstream consumers can track fallback rates.
type SummaryGenerated struct {
	SurveyUUID      string    `json:"survey_uuid"`
	SchemaValidated bool      `json:"schema_validated"`
	Fallback        bool      `json:"fallback"`
	ViolationCount  int       `json:"violation_count"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

// Publish marshals data and publishes it on subject. A nil publisher
// is a no-op.
func (p *Publisher) Publish(subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.conn.Publish(subject, payload)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}

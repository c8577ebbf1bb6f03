// Package audit captures registry mutations for compliance trails. Events are
// transport-agnostic so sinks can fan out: the default publisher writes to
// the structured log, deployments with a broker stream them to Kafka.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Action names the registry operation an event records. Reads are not
// audited; the registry's only mutation is issuance.
type Action string

const (
	ActionAchievementIssued Action = "achievement_issued"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	AchievementID uint32    `json:"achievement_id"`
	CourseID      uint32    `json:"course_id"`
	UserID        uint32    `json:"user_id"`
	// Issuer is the authenticated issuer identity when issuer-token
	// enforcement is enabled; empty under the default open policy.
	Issuer string `json:"issuer,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
}

// Publisher emits audit events for registry mutations.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// LogPublisher writes audit events to the structured log. It is the default
// sink so issuance always leaves a trace even without a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"action", string(event.Action),
		"achievement_id", event.AchievementID,
		"course_id", event.CourseID,
		"user_id", event.UserID,
		"issuer", event.Issuer,
		"request_id", event.RequestID,
	)
	return nil
}

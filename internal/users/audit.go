package users

import (
	"context"
	"time"
)

const (
	AuditFieldRole   = "role"
	AuditFieldStatus = "status"
)

// AuditEvent records one administrative field change.
type AuditEvent struct {
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId"`
	Field      string    `json:"field"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

// AuditSink receives audit events after the change they describe is persisted.
type AuditSink interface {
	Record(ctx context.Context, events ...AuditEvent) error
}

// WelcomeNotifier dispatches the best-effort welcome message after
// registration. Implementations must not block the caller.
type WelcomeNotifier interface {
	Dispatch(ctx context.Context, email, displayName string)
}

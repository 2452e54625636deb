package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security-relevant event: auth attempts, admin
// mutations, cash-out redemptions.
type AuditEvent struct {
	EventType     string
	UserID        string
	ActorID       string // The admin performing a privileged action, if any
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// Log writes the event; failures log at Warn so they stand out in the
// stream without paging anyone.
func (al *AuditLogger) Log(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "hunt"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", event.ActorID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogAuthAttempt logs authentication attempts
func (al *AuditLogger) LogAuthAttempt(eventType, userID, ip string, success bool, reason string) {
	al.Log(AuditEvent{
		EventType:     eventType,
		UserID:        userID,
		IPAddress:     ip,
		Success:       success,
		FailureReason: reason,
	})
}

// LogAdminAction logs privileged mutations against a target user or item.
func (al *AuditLogger) LogAdminAction(eventType, actorID string, metadata map[string]string) {
	al.Log(AuditEvent{
		EventType: eventType,
		ActorID:   actorID,
		Success:   true,
		Metadata:  metadata,
	})
}

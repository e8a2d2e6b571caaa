// Package audit records auth events to the audit log and, when configured,
// to the Kafka audit pipeline consumed by cmd/worker.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"dastyar-dashboard/internal/audit/domain"
	auditrepo "dastyar-dashboard/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource. Used by the auth code paths.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, phone, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional event
// emitter, and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	emitter     EventEmitter
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo, emits to emitter when
// non-nil, and uses ipExtractor for client IP. ipExtractor may be nil; then IP
// is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, emitter EventEmitter, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, emitter: emitter, ipExtractor: ipExtractor}
}

// LogEvent writes one audit event. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, phone, action, resource, metadata string) {
	if l.repo == nil && l.emitter == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	event := &domain.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Phone:     phone,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if l.repo != nil {
		if err := l.repo.Create(ctx, event); err != nil {
			log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
		}
	}
	EmitAsync(l.emitter, ctx, event)
}

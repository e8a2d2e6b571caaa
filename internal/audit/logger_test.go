package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dastyar-dashboard/internal/audit/domain"
)

// fakeAuditRepo records created events.
type fakeAuditRepo struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
}

func (f *fakeAuditRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAuditRepo) ListRecent(ctx context.Context, limit, offset int32) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events, nil
}

// fakeEmitter records emitted events and signals on each emit.
type fakeEmitter struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
	done   chan struct{}
}

func newFakeEmitter() *fakeEmitter {
	return &fakeEmitter{done: make(chan struct{}, 8)}
}

func (f *fakeEmitter) Emit(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	if f.err == nil {
		f.events = append(f.events, e)
	}
	err := f.err
	f.mu.Unlock()
	f.done <- struct{}{}
	return err
}

func (f *fakeEmitter) waitForEmit(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async emit")
	}
}

func TestLogEvent_PersistsAndEmits(t *testing.T) {
	repo := &fakeAuditRepo{}
	emitter := newFakeEmitter()
	logger := NewLogger(repo, emitter, func(context.Context) string { return "10.0.0.1" })

	logger.LogEvent(context.Background(), "user-1", "09123456789", domain.ActionOTPLogin, "UserAuth/LoginByOtp", "")
	emitter.waitForEmit(t)

	if len(repo.events) != 1 {
		t.Fatalf("persisted %d events, want 1", len(repo.events))
	}
	e := repo.events[0]
	if e.ID == "" {
		t.Error("event ID should be assigned")
	}
	if e.UserID != "user-1" || e.Phone != "09123456789" {
		t.Errorf("event identity = %q/%q", e.UserID, e.Phone)
	}
	if e.Action != domain.ActionOTPLogin || e.Resource != "UserAuth/LoginByOtp" {
		t.Errorf("event = %q/%q", e.Action, e.Resource)
	}
	if e.IP != "10.0.0.1" {
		t.Errorf("event IP = %q, want 10.0.0.1", e.IP)
	}

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(emitter.events))
	}
}

func TestLogEvent_NilIPExtractor(t *testing.T) {
	repo := &fakeAuditRepo{}
	logger := NewLogger(repo, nil, nil)
	logger.LogEvent(context.Background(), "", "09123456789", domain.ActionOTPSent, "UserAuth/SendOtpCode", "")
	if len(repo.events) != 1 {
		t.Fatalf("persisted %d events, want 1", len(repo.events))
	}
	if repo.events[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.events[0].IP)
	}
}

func TestLogEvent_RepoFailureDoesNotPanic(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	logger := NewLogger(repo, nil, nil)
	// Best-effort: no panic, no error surfaced.
	logger.LogEvent(context.Background(), "user-1", "09123456789", domain.ActionLoginFailure, "UserAuth/login", "")
}

func TestEmitAsync_NilEmitterOrEvent(t *testing.T) {
	EmitAsync(nil, context.Background(), &domain.Event{})
	emitter := newFakeEmitter()
	EmitAsync(emitter, context.Background(), nil)
	select {
	case <-emitter.done:
		t.Fatal("nil event should not be emitted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitAsync_SurvivesCanceledRequestContext(t *testing.T) {
	emitter := newFakeEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	EmitAsync(emitter, ctx, &domain.Event{ID: "e1", Action: domain.ActionOTPSent})
	emitter.waitForEmit(t)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.events) != 1 {
		t.Fatalf("emitted %d events, want 1 despite canceled request context", len(emitter.events))
	}
}

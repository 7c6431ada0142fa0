package hirez

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// sessionManager owns the session lifecycle: it creates a session lazily on
// first use, tracks its validity window, and replaces it after expiry. The
// check-then-create sequence is guarded so that concurrent callers observing
// a missing or expired session share a single createsession request.
type sessionManager struct {
	store  SessionStore
	ttl    time.Duration
	log    *slog.Logger
	create func(ctx context.Context) (string, error)
	group  singleflight.Group
}

func newSessionManager(store SessionStore, ttl time.Duration, log *slog.Logger, create func(ctx context.Context) (string, error)) *sessionManager {
	return &sessionManager{
		store:  store,
		ttl:    ttl,
		log:    log,
		create: create,
	}
}

// Ensure returns the id of a live session, creating one if none is cached or
// the cached one has expired. When multiple goroutines arrive here without a
// valid session, exactly one createsession request is issued and every caller
// uses its result. A caller whose context is cancelled stops waiting, but the
// shared creation keeps running for the callers that still depend on it.
func (m *sessionManager) Ensure(ctx context.Context) (string, error) {
	s, err := m.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("hirez: session store: %w", err)
	}
	if s.Valid(time.Now()) {
		return s.ID, nil
	}

	ch := m.group.DoChan(methodCreateSession, func() (interface{}, error) {
		// Detached from the winning caller's context: cancelling one
		// waiter must not abort the creation for the others. The
		// transport's own timeout still bounds the request.
		return m.createAndInstall(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *sessionManager) createAndInstall(ctx context.Context) (string, error) {
	// A creation may have completed between the store check and winning
	// the flight; its result is still fresh, reuse it.
	if s, err := m.store.Get(ctx); err == nil && s.Valid(time.Now()) {
		return s.ID, nil
	}

	id, err := m.create(ctx)
	if err != nil {
		// Nothing is installed: the manager stays sessionless and the
		// next call retries creation from scratch.
		if m.log != nil {
			m.log.Error("session creation failed", slog.Any("error", err))
		}
		return "", err
	}

	now := time.Now().UTC()
	s := &Session{ID: id, CreatedAt: now, ExpiresAt: now.Add(m.ttl)}
	if err := m.store.Put(ctx, s); err != nil {
		return "", fmt.Errorf("hirez: session store: %w", err)
	}
	if m.log != nil {
		m.log.Debug("session created",
			slog.String("session_id", id),
			slog.Time("expires_at", s.ExpiresAt))
	}
	return id, nil
}

// Invalidate drops the cached session when the server stops honoring it
// before the locally tracked window has elapsed.
func (m *sessionManager) Invalidate(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		if m.log != nil {
			m.log.Error("failed to drop rejected session", slog.Any("error", err))
		}
		return
	}
	if m.log != nil {
		m.log.Debug("session invalidated", slog.String("session_id", id))
	}
}

package auth

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
)

// Deliberately outside the cleared ALH_ namespace so a local-data clear
// never logs the user out.
const sessionTokenKey = "session_token"

// SessionContext is the process-wide current-session holder. It tracks
// auth-state changes, persists the token across restarts, and re-validates
// the token on every Session call so scoped writes never trust a stale
// cached identity.
type SessionContext struct {
	svc   *Service
	store kv.Store

	mu    sync.RWMutex
	token string
}

// NewSessionContext subscribes to svc's auth events. store may be nil when
// persistence across restarts is not wanted (tests).
func NewSessionContext(svc *Service, store kv.Store) *SessionContext {
	c := &SessionContext{svc: svc, store: store}
	svc.Subscribe(c.onEvent)
	return c
}

// Restore loads a persisted token from a previous run and validates it.
// An invalid or expired token is discarded silently.
func (c *SessionContext) Restore() {
	if c.store == nil {
		return
	}
	token, ok, err := c.store.Get(sessionTokenKey)
	if err != nil || !ok {
		return
	}
	if _, err := c.svc.Validate(token); err != nil {
		c.store.Remove(sessionTokenKey)
		return
	}
	c.setToken(token, false)
}

// Session returns the current authenticated session, freshly re-validated,
// or nil when no valid session exists.
func (c *SessionContext) Session() (*Session, error) {
	token := c.Token()
	if token == "" {
		return nil, nil
	}

	session, err := c.svc.Validate(token)
	if errors.Is(err, ErrInvalidSession) {
		c.clear()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Token returns the raw current token without validation.
func (c *SessionContext) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *SessionContext) onEvent(e Event) {
	switch e.Kind {
	case EventSignedIn:
		c.setToken(e.Session.Token, true)
	case EventSignedOut:
		c.clear()
	}
}

func (c *SessionContext) setToken(token string, persist bool) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if persist && c.store != nil {
		if err := c.store.Set(sessionTokenKey, token); err != nil {
			slog.Error("failed to persist session token", "error", err)
		}
	}
}

func (c *SessionContext) clear() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	if c.store != nil {
		c.store.Remove(sessionTokenKey)
	}
}

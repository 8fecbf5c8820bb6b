// Package storage is the single entry point for persistence. One uniform
// Service contract, two implementations: LocalStore over a namespaced
// key-value file and RemoteStore over the hosted auth + table backend. The
// backend is chosen once at construction from the configuration; it is
// never switched mid-session.
package storage

import (
	"errors"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/auth"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/config"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("an account with this email already exists")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Service is the uniform method set callers use regardless of backend.
//
// Propagation policy: auth failures and mutations surface errors; list and
// settings reads degrade to empty results or defaults instead of failing.
type Service interface {
	Login(email, password string) (*User, error)
	Signup(name, email, password, role string) (*User, error)
	Logout() error
	CurrentUser() (*User, error)

	SaveProject(p *Project) (*Project, error)
	Projects() ([]Project, error)
	DeleteProject(id string) error

	SaveActivity(a *Activity) (*Activity, error)
	Activities(projectID string) ([]Activity, error)

	SaveResource(r *Resource) (*Resource, error)
	Resources(projectID string) ([]Resource, error)

	SaveBadge(b *Badge) (*Badge, error)
	Badges() ([]Badge, error)
	UpdateUserXP(delta int) error

	SaveSettings(s *Settings) error
	Settings() (*Settings, error)

	// LogAction is a fire-and-forget audit insert. Remote-only; a no-op in
	// local mode.
	LogAction(action, entityType, entityID string, metadata map[string]any)
}

// SessionSource yields the current authenticated session, re-fetched fresh
// at call time. A (nil, nil) result means no active session.
type SessionSource interface {
	Session() (*auth.Session, error)
}

// RemoteDeps carries the remote backend's dependencies. Unused in local mode.
type RemoteDeps struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Sessions SessionSource
}

// New selects the backend implementation for the configured mode.
func New(cfg *config.Config, store kv.Store, deps RemoteDeps) (Service, error) {
	if cfg.Remote() {
		if deps.DB == nil || deps.Auth == nil || deps.Sessions == nil {
			return nil, errors.New("remote mode requires database, auth service and session source")
		}
		return NewRemote(deps.DB, deps.Auth, deps.Sessions), nil
	}
	if store == nil {
		return nil, errors.New("local mode requires a key-value store")
	}
	return NewLocal(store), nil
}

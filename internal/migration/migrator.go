// Package migration copies a local installation's data into the remote
// backend: one-directional, best-effort, non-transactional, idempotent only
// through remote duplicate-key suppression. Local data is never deleted by
// a run; ClearLocal is the separate, explicit operation for that.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/kv"
	"github.com/ebarcelosf/active-learn-hub-backup/internal/storage"
)

var (
	ErrAlreadyCompleted = errors.New("migration already completed")
	ErrNoSession        = errors.New("migration requires an authenticated session")
	ErrDeclined         = errors.New("migration declined by user")
)

const confirmPrompt = "Local data was found that can be moved to the cloud. " +
	"Migrating makes it available on any device with automatic backup. Migrate now?"

// Confirmer is the yes/no decision point in front of the migration.
// Declining leaves everything untouched and the routine retriable.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Report summarizes a run. Skipped items hit the duplicate-suppression
// path; failed items errored for any other reason and were logged.
type Report struct {
	ProjectsMigrated int  `json:"projects_migrated"`
	ProjectsSkipped  int  `json:"projects_skipped"`
	ProjectsFailed   int  `json:"projects_failed"`
	BadgesMigrated   int  `json:"badges_migrated"`
	BadgesSkipped    int  `json:"badges_skipped"`
	BadgesFailed     int  `json:"badges_failed"`
	SettingsMigrated bool `json:"settings_migrated"`
}

type Migrator struct {
	store    kv.Store
	local    *storage.LocalStore
	remote   *storage.RemoteStore
	sessions storage.SessionSource
}

func New(store kv.Store, local *storage.LocalStore, remote *storage.RemoteStore, sessions storage.SessionSource) *Migrator {
	return &Migrator{store: store, local: local, remote: remote, sessions: sessions}
}

// Completed reports whether the completed marker is set. Only ClearLocal
// sets it; a successful Run alone leaves the routine re-runnable.
func (m *Migrator) Completed() bool {
	v, ok, _ := m.store.Get(storage.KeyMigrationCompleted)
	return ok && v == "true"
}

// Run executes the three phases strictly in order: projects, badges,
// settings. Per-item failures are logged and skipped; the loop continues.
// Completed phases are never rolled back.
func (m *Migrator) Run(confirm Confirmer) (*Report, error) {
	if m.Completed() {
		return nil, ErrAlreadyCompleted
	}

	session, err := m.sessions.Session()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}

	if !confirm.Confirm(confirmPrompt) {
		return nil, ErrDeclined
	}

	slog.Info("starting local data migration", "user_id", session.UserID)
	report := &Report{}

	projects, err := m.local.Projects()
	if err != nil {
		return nil, fmt.Errorf("reading local projects: %w", err)
	}
	for i := range projects {
		p := &projects[i]
		switch err := m.remote.ImportProject(p); {
		case err == nil:
			report.ProjectsMigrated++
			slog.Info("migrated project", "name", p.Name)
		case errors.Is(err, storage.ErrConflict):
			report.ProjectsSkipped++
			slog.Info("project already migrated, skipping", "name", p.Name)
		default:
			report.ProjectsFailed++
			slog.Error("failed to migrate project", "name", p.Name, "error", err)
		}
	}

	badges, err := m.local.Badges()
	if err != nil {
		return nil, fmt.Errorf("reading local badges: %w", err)
	}
	for i := range badges {
		b := &badges[i]
		switch err := m.remote.ImportBadge(b); {
		case err == nil:
			report.BadgesMigrated++
			slog.Info("migrated badge", "title", b.Title)
		case errors.Is(err, storage.ErrConflict):
			report.BadgesSkipped++
			slog.Info("badge already migrated, skipping", "title", b.Title)
		default:
			report.BadgesFailed++
			slog.Error("failed to migrate badge", "title", b.Title, "error", err)
		}
	}

	if m.local.HasSettings() {
		settings, err := m.local.Settings()
		if err != nil {
			return report, fmt.Errorf("reading local settings: %w", err)
		}
		if err := m.remote.SaveSettings(settings); err != nil {
			slog.Error("failed to migrate settings", "error", err)
		} else {
			report.SettingsMigrated = true
		}
	}

	slog.Info("local data migration finished",
		"projects", report.ProjectsMigrated,
		"projects_skipped", report.ProjectsSkipped,
		"badges", report.BadgesMigrated,
		"badges_skipped", report.BadgesSkipped,
		"settings", report.SettingsMigrated)

	return report, nil
}

// ClearLocal removes every namespaced local key except the migration marker
// pair, then sets the completed flag and its timestamp. It is the only path
// that sets the flag, and it is never invoked automatically.
func (m *Migrator) ClearLocal() error {
	keys, err := m.store.Keys(storage.Namespace)
	if err != nil {
		return fmt.Errorf("listing local keys: %w", err)
	}

	for _, key := range keys {
		if key == storage.KeyMigrationCompleted || key == storage.KeyMigrationDate {
			continue
		}
		if err := m.store.Remove(key); err != nil {
			return fmt.Errorf("removing %s: %w", key, err)
		}
	}

	if err := m.store.Set(storage.KeyMigrationCompleted, "true"); err != nil {
		return err
	}
	return m.store.Set(storage.KeyMigrationDate, time.Now().UTC().Format(time.RFC3339))
}

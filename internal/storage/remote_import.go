package storage

import (
	"errors"
	"fmt"

	"github.com/ebarcelosf/active-learn-hub-backup/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Import entry points used only by the local-to-remote migration. Unlike
// the regular save paths they preserve provenance and timestamps, and they
// report a duplicate-key hit as ErrConflict so the caller can count the
// item as skipped instead of inserted.

// ImportProject inserts a copy of a locally created project. The local
// synthetic id travels along as source_id; its unique index per owner is
// what makes a re-run of the migration idempotent.
func (r *RemoteStore) ImportProject(p *Project) error {
	session, err := r.requireSession()
	if err != nil {
		return err
	}

	sourceID := p.ID
	row := models.Project{
		ID:                 uuid.New(),
		UserID:             session.UserID,
		Name:               p.Name,
		Description:        p.Description,
		Status:             defaultString(p.Status, "active"),
		PhaseData:          toJSON(p.Phases),
		Tags:               toJSON(orEmptyStrings(p.Tags)),
		ProgressPercentage: p.Progress,
		SourceID:           &sourceID,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to import project %q: %w", p.Name, err)
	}
	return nil
}

// ImportBadge inserts a copy of a locally earned badge, keeping its earned
// timestamp. Duplicate awards report ErrConflict.
func (r *RemoteStore) ImportBadge(b *Badge) error {
	session, err := r.requireSession()
	if err != nil {
		return err
	}

	row := models.Badge{
		ID:          uuid.New(),
		UserID:      session.UserID,
		BadgeID:     b.ID,
		Title:       b.Title,
		Description: b.Description,
		Icon:        b.Icon,
		XP:          b.XP,
		Category:    defaultString(b.Category, "special"),
		Metadata:    toJSON(b.Metadata),
		EarnedAt:    b.EarnedAt,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to import badge %q: %w", b.Title, err)
	}
	return nil
}

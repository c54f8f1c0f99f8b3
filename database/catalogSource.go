package database

import (
	"context"
	"fmt"
	"sync"

	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"

	"gorm.io/gorm"
)

// CatalogSource implements progress.CatalogSource from the workshop_sessions
// table. Catalogs are immutable during an enrollment, so resolved catalogs
// are cached per workshop; admin edits must call Invalidate.
type CatalogSource struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[uint]progress.Catalog
}

func NewCatalogSource(db *gorm.DB) *CatalogSource {
	return &CatalogSource{db: db, cache: make(map[uint]progress.Catalog)}
}

func (s *CatalogSource) SessionCatalog(ctx context.Context, workshopID uint) (progress.Catalog, error) {
	s.mu.RLock()
	cached, ok := s.cache[workshopID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var rows []workshopModels.WorkshopSession
	err := s.db.WithContext(ctx).
		Where("workshop_id = ? AND is_deleted = ? AND is_published = ?", workshopID, false, true).
		Order("session_number asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", progress.ErrStorage, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: workshop %d has no published sessions", progress.ErrNotFound, workshopID)
	}

	defs := make([]progress.SessionDefinition, len(rows))
	for i, row := range rows {
		defs[i] = progress.SessionDefinition{
			SessionNumber:   row.SessionNumber,
			DurationSeconds: row.DurationSeconds,
			Rules: progress.UnlockRules{
				RequiresPreviousCompletion: row.RequiresPreviousCompletion,
				TimeGapAfterPreviousHours:  row.TimeGapAfterPreviousHours,
				RequiresAssignment:         row.RequiresAssignment,
				UnlockAssignmentID:         row.UnlockAssignmentID,
				RequiresRating:             row.RequiresRating,
				RequiresTestimony:          row.RequiresTestimony,
			},
		}
	}

	catalog, err := progress.NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("workshop %d: %v", workshopID, err)
	}

	s.mu.Lock()
	s.cache[workshopID] = catalog
	s.mu.Unlock()
	return catalog, nil
}

// Invalidate drops the cached catalog after an admin edits sessions.
func (s *CatalogSource) Invalidate(workshopID uint) {
	s.mu.Lock()
	delete(s.cache, workshopID)
	s.mu.Unlock()
}

package progress

import "context"

// Store is the persistence boundary for progress records. Implementations
// must make Save conditional on the expected version (compare-and-swap) so
// that concurrent read-modify-write cycles against the same enrollment are
// detected rather than silently lost.
//
// Error contract: Load returns ErrNotFound when no record exists; Save
// returns ErrVersionConflict when the stored version moved; any transport
// or database failure is wrapped in ErrStorage. On success Save bumps
// rec.Version to the newly persisted version.
type Store interface {
	Load(ctx context.Context, enrollmentID uint) (*Record, error)
	Save(ctx context.Context, rec *Record, expectedVersion uint) error
	Create(ctx context.Context, rec *Record) error
}

// CatalogSource resolves a workshop's session catalog. Catalogs are
// immutable during an enrollment, so implementations are free to cache.
type CatalogSource interface {
	SessionCatalog(ctx context.Context, workshopID uint) (Catalog, error)
}

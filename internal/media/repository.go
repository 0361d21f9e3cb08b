package media

import (
	"context"

	"gorm.io/gorm"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
)

// Repository wires together media enrichment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateEnrichment inserts a new enrichment row.
func (r *Repository) CreateEnrichment(ctx context.Context, enrichment *models.MediaEnrichment) (*models.MediaEnrichment, error) {
	if err := r.db.WithContext(ctx).Create(enrichment).Error; err != nil {
		return nil, err
	}
	return enrichment, nil
}

// FindByEventID loads the enrichment for a processor event, if any.
func (r *Repository) FindByEventID(ctx context.Context, eventID string) (*models.MediaEnrichment, error) {
	var enrichment models.MediaEnrichment
	if err := r.db.WithContext(ctx).First(&enrichment, "event_id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &enrichment, nil
}

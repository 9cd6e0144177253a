package documentrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/document"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormDocumentRepository struct {
	db *gorm.DB
}

func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func (r *GormDocumentRepository) Get(ctx context.Context, filename string) (*document.Document, error) {
	if filename == "" {
		return nil, errs.NewValueIsRequiredError("filename")
	}

	var dto DocumentDTO
	if err := r.db.WithContext(ctx).First(&dto, "filename = ?", filename).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("document", filename)
		}
		return nil, err
	}

	return toDomain(dto)
}

// Upsert inserts the record or overwrites its delivery state. The identity columns of an
// existing row are left as they are.
func (r *GormDocumentRepository) Upsert(ctx context.Context, aggregate *document.Document) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "filename"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "sent_at", "error_message", "attempts", "container_ids", "updated_at",
			}),
		}).
		Create(&dto).Error
}

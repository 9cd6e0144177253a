package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/document"
)

type DocumentRepository interface {
	// Get returns errs.ObjectNotFoundError when no attempt was ever recorded for filename.
	Get(ctx context.Context, filename string) (*document.Document, error)

	// Upsert inserts or updates the record keyed by filename.
	Upsert(ctx context.Context, aggregate *document.Document) error
}

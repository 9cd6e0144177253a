package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type GetOrderDocumentsQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderDocumentsQueryHandler(db *gorm.DB) GetOrderDocumentsQueryHandler {
	return GetOrderDocumentsQueryHandler{db: db}
}

// Handle returns the records sorted by filename, which follows document number order.
func (h GetOrderDocumentsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderDocumentsQuery,
) ([]GetOrderDocumentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	documents := make([]GetOrderDocumentsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			filename,
			doc_type,
			shipment_id,
			container_ids,
			status,
			sent_at,
			error_message,
			attempts,
			updated_at
		FROM outbound_documents
		WHERE order_id = ?
		ORDER BY filename
	`, query.OrderID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetOrderDocumentsQueryResponse
		var shipmentID uuid.UUID
		var containerIDs pq.StringArray
		if err = rows.Scan(
			&resp.Filename,
			&resp.DocType,
			&shipmentID,
			&containerIDs,
			&resp.Status,
			&resp.SentAt,
			&resp.ErrorMessage,
			&resp.Attempts,
			&resp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if resp.ShipmentID, err = kernel.UUIDFromBytes(shipmentID[:]); err != nil {
			return nil, err
		}
		resp.ContainerIDs = []string(containerIDs)
		documents = append(documents, resp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}

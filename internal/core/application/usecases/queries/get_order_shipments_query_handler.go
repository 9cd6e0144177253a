package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderShipmentsQueryHandler struct {
	db     *gorm.DB
	labels services.LabelBuilder
}

func NewGetOrderShipmentsQueryHandler(db *gorm.DB) GetOrderShipmentsQueryHandler {
	return GetOrderShipmentsQueryHandler{db: db, labels: services.NewLabelBuilder()}
}

// Handle returns the shipments ordered by sequence index, items by packing position.
// An order without shipments yields an empty slice.
func (h GetOrderShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderShipmentsQuery,
) ([]GetOrderShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	shipments := make([]GetOrderShipmentsQueryResponse, 0)
	index := make(map[uuid.UUID]int)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			sequence_index,
			container_id,
			document_number,
			carrier,
			tracking_number,
			package_type,
			created_at
		FROM shipments
		WHERE order_id = ?
		ORDER BY sequence_index
	`, query.OrderID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetOrderShipmentsQueryResponse
		var id uuid.UUID
		if err = rows.Scan(
			&id,
			&resp.SequenceIndex,
			&resp.ContainerID,
			&resp.DocumentNumber,
			&resp.Carrier,
			&resp.TrackingNumber,
			&resp.PackageType,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.Label, err = h.labels.BuildLabel(resp.ContainerID); err != nil {
			return nil, err
		}
		resp.Items = make([]ShipmentItemResponse, 0)
		index[id] = len(shipments)
		shipments = append(shipments, resp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(shipments) == 0 {
		return shipments, nil
	}

	if err = h.loadItems(ctx, query.OrderID(), shipments, index); err != nil {
		return nil, err
	}
	return shipments, nil
}

func (h GetOrderShipmentsQueryHandler) loadItems(
	ctx context.Context,
	orderID kernel.UUID,
	shipments []GetOrderShipmentsQueryResponse,
	index map[uuid.UUID]int,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			i.shipment_id,
			i.line_number,
			i.supplier_item_id,
			i.gtin,
			i.quantity
		FROM shipment_items i
		JOIN shipments s ON s.id = i.shipment_id
		WHERE s.order_id = ?
		ORDER BY s.sequence_index, i.position
	`, orderID.String()).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var shipmentID uuid.UUID
		var item ShipmentItemResponse
		if err = rows.Scan(&shipmentID, &item.LineNumber, &item.SupplierItemID, &item.GTIN, &item.Quantity); err != nil {
			return err
		}
		i, ok := index[shipmentID]
		if !ok {
			continue
		}
		shipments[i].Items = append(shipments[i].Items, item)
		shipments[i].TotalQuantity += item.Quantity
	}
	return rows.Err()
}

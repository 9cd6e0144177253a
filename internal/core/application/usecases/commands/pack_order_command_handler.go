package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
	"fulfillment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// PackOrderResult is the order together with its shipments. Packed is false when the
// order already had shipments and nothing was allocated.
type PackOrderResult struct {
	Order     *order.Order
	Shipments []*shipment.Shipment
	Packed    bool
}

// PackOrderCommandHandler packs an order exactly once. Validation, packing, identifier
// allocation and persistence run in one transaction; a failure leaves no shipment behind.
//
// Example:
//
//	handler := NewPackOrderCommandHandler(uowFactory, scheme, services.NewPackingEngine(), m)
//	cmd, _ := NewPackOrderCommand(orderID, 12, true, "DHL", shipment.PackageTypeBox)
//
//	res, err := handler.Handle(ctx, cmd)
//	if errs.IsFatal(err) {
//	    // reject the order
//	}
//	fmt.Printf("%d shipments\n", len(res.Shipments))
type PackOrderCommandHandler struct {
	uowFactory PackingUoWFactory
	scheme     services.ContainerIDScheme
	engine     services.PackingEngine
	metrics    *metrics.Metrics
}

func NewPackOrderCommandHandler(
	uowFactory PackingUoWFactory,
	scheme services.ContainerIDScheme,
	engine services.PackingEngine,
	m *metrics.Metrics,
) (*PackOrderCommandHandler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	return &PackOrderCommandHandler{
		uowFactory: uowFactory,
		scheme:     scheme,
		engine:     engine,
		metrics:    m,
	}, nil
}

func (h *PackOrderCommandHandler) Handle(ctx context.Context, cmd PackOrderCommand) (res PackOrderResult, err error) {
	if err = cmd.Validate(); err != nil {
		return PackOrderResult{}, err
	}

	ctx, span := tracing.Start(ctx, "PackOrder",
		attribute.String("order_id", cmd.OrderID().String()),
		attribute.Int("capacity", cmd.Capacity()),
		attribute.Bool("allow_split", cmd.AllowSplit()),
	)
	defer func() { tracing.End(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return PackOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return PackOrderResult{}, err
	}

	existing, err := uow.ShipmentRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return PackOrderResult{}, err
	}
	if len(existing) > 0 {
		span.SetAttributes(attribute.Bool("already_packed", true))
		return PackOrderResult{Order: o, Shipments: existing}, nil
	}

	shipments, err := h.pack(ctx, uow, o, cmd)
	if err != nil {
		h.recordFailure(err)
		return PackOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return PackOrderResult{}, err
	}

	h.metrics.RecordPacking(len(shipments))
	span.SetAttributes(attribute.Int("shipments", len(shipments)))
	return PackOrderResult{Order: o, Shipments: shipments, Packed: true}, nil
}

func (h *PackOrderCommandHandler) pack(ctx context.Context, uow PackingUoW, o *order.Order, cmd PackOrderCommand) ([]*shipment.Shipment, error) {
	// Nothing may be allocated for an order that cannot be shipped as a whole.
	if err := o.ValidateForPacking(); err != nil {
		return nil, err
	}

	lines := o.Lines()
	groups, err := h.engine.Pack(lines, cmd.Capacity(), cmd.AllowSplit())
	if err != nil {
		return nil, err
	}
	if err = services.VerifyPacking(lines, groups, cmd.Capacity()); err != nil {
		return nil, err
	}

	allocator, err := services.NewContainerIDAllocator(h.scheme, uow.SerialCounter())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	repo := uow.ShipmentRepository()
	shipments := make([]*shipment.Shipment, 0, len(groups))
	for i, g := range groups {
		s, err := h.newShipment(ctx, allocator, o, i, g, cmd, now)
		if err != nil {
			return nil, fmt.Errorf("shipment %d: %w", i+1, err)
		}
		if err = repo.Add(ctx, s); err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}

	o.MarkPacked(now)
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	return shipments, nil
}

func (h *PackOrderCommandHandler) newShipment(
	ctx context.Context,
	allocator *services.ContainerIDAllocator,
	o *order.Order,
	sequenceIndex int,
	group services.PackedShipment,
	cmd PackOrderCommand,
	now time.Time,
) (*shipment.Shipment, error) {
	containerID, err := allocator.AllocateContainerID(ctx)
	if err != nil {
		return nil, err
	}
	documentNumber, err := allocator.AllocateDocumentNumber(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]shipment.Item, 0, len(group.Items))
	for _, pi := range group.Items {
		item, err := shipment.NewItem(pi.Line.LineNumber(), pi.Line.SupplierItemID(), pi.Line.GTIN(), pi.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return shipment.NewShipment(kernel.NewUUID(), o.ID(), sequenceIndex, containerID, documentNumber,
		cmd.Carrier(), cmd.PackageType(), items, now)
}

func (h *PackOrderCommandHandler) recordFailure(err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		h.metrics.RecordPackingFailure("validation")
	case errors.Is(err, errs.ErrSerialSpaceExhausted):
		h.metrics.RecordPackingFailure("exhausted")
	default:
		h.metrics.RecordPackingFailure("internal")
	}
}

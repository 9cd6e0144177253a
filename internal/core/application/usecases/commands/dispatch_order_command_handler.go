package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// DispatchDefaults fill in what a trigger leaves out.
type DispatchDefaults struct {
	Capacity    int
	AllowSplit  bool
	PackageType shipment.PackageType
	Carriers    shipment.CarrierPolicy
}

type (
	OrderPacker interface {
		Handle(ctx context.Context, cmd PackOrderCommand) (PackOrderResult, error)
	}

	ShipmentDeliverer interface {
		Handle(ctx context.Context, cmd DeliverShipmentCommand) (ShipmentResult, error)
	}
)

// DispatchOrderCommandHandler runs the whole pipeline for one order: pack (once), then
// deliver every shipment's document. Validation and exhaustion errors abort the order, are
// stored on it as a rejection and are returned; transport failures are reported per
// shipment in the results. The order is marked dispatched once every document reached the
// partner.
type DispatchOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	packer     OrderPacker
	deliverer  ShipmentDeliverer
	defaults   DispatchDefaults
	logger     *slog.Logger
}

func NewDispatchOrderCommandHandler(
	uowFactory OrderUoWFactory,
	packer OrderPacker,
	deliverer ShipmentDeliverer,
	defaults DispatchDefaults,
	logger *slog.Logger,
) (*DispatchOrderCommandHandler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if packer == nil {
		return nil, errs.NewValueIsRequiredError("packer")
	}
	if deliverer == nil {
		return nil, errs.NewValueIsRequiredError("deliverer")
	}
	if defaults.Capacity < 1 {
		return nil, errs.NewConfigurationError("DEFAULT_CAPACITY", "must be positive")
	}
	if err := defaults.PackageType.Validate(); err != nil {
		return nil, errs.NewConfigurationError("DEFAULT_PACKAGE_TYPE", err.Error())
	}
	if len(defaults.Carriers.Allowed()) == 0 {
		return nil, errs.NewConfigurationError("CARRIERS", "at least one carrier is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DispatchOrderCommandHandler{
		uowFactory: uowFactory,
		packer:     packer,
		deliverer:  deliverer,
		defaults:   defaults,
		logger:     logger.With("component", "dispatch"),
	}, nil
}

func (h *DispatchOrderCommandHandler) Handle(ctx context.Context, cmd DispatchOrderCommand) (results []ShipmentResult, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "DispatchOrder",
		attribute.String("order_id", cmd.OrderID().String()),
		attribute.Bool("force", cmd.Force()),
	)
	defer func() { tracing.End(span, err) }()

	log := h.logger.With("order_id", cmd.OrderID().String())

	carrier, err := h.defaults.Carriers.Normalize(cmd.Carrier())
	if err != nil {
		log.Error("carrier rejected", "carrier", cmd.Carrier(), "error", err)
		return nil, err
	}

	packCmd, err := NewPackOrderCommand(
		cmd.OrderID(),
		cmd.Capacity(h.defaults.Capacity),
		cmd.AllowSplit(h.defaults.AllowSplit),
		carrier,
		h.defaults.PackageType,
	)
	if err != nil {
		return nil, err
	}

	packed, err := h.packer.Handle(ctx, packCmd)
	if err != nil {
		if errs.IsFatal(err) {
			log.Error("order rejected", "error", err)
			h.recordRejection(context.WithoutCancel(ctx), cmd.OrderID(), err, log)
		}
		return nil, err
	}
	if packed.Packed {
		log.Info("order packed", "shipments", len(packed.Shipments))
	}

	results = make([]ShipmentResult, 0, len(packed.Shipments))
	allDone := true
	for _, s := range packed.Shipments {
		deliverCmd, err := NewDeliverShipmentCommand(packed.Order, s, cmd.Force())
		if err != nil {
			return results, err
		}

		r, err := h.deliverer.Handle(ctx, deliverCmd)
		if err != nil {
			log.Error("delivery aborted", "shipment_id", s.ID().String(), "error", err)
			return results, err
		}
		results = append(results, r)
		h.logResult(log, r)

		if !r.Done() {
			allDone = false
		}
	}

	if allDone && !packed.Order.IsDispatched() {
		if err = h.markDispatched(ctx, packed); err != nil {
			return results, err
		}
		log.Info("order dispatched", "shipments", len(results))
	}

	return results, nil
}

func (h *DispatchOrderCommandHandler) markDispatched(ctx context.Context, packed PackOrderResult) error {
	if err := packed.Order.MarkDispatched(time.Now()); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Update(ctx, packed.Order); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// recordRejection keeps the sweep from picking the order up again. Failing to store the
// marker is logged only; the caller already has the real error.
func (h *DispatchOrderCommandHandler) recordRejection(ctx context.Context, orderID kernel.UUID, cause error, log *slog.Logger) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.Error("rejection not recorded", "error", err)
		return
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, orderID)
	if err == nil {
		o.Reject(cause.Error(), time.Now())
		err = repo.Update(ctx, o)
	}
	if err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		log.Error("rejection not recorded", "error", err)
	}
}

func (h *DispatchOrderCommandHandler) logResult(log *slog.Logger, r ShipmentResult) {
	attrs := []any{
		"shipment_id", r.ShipmentID.String(),
		"container_id", r.ContainerID,
		"filename", r.Filename,
		"status", string(r.Status),
	}
	switch r.Status {
	case DeliveryError:
		log.Warn("document delivery failed", append(attrs, "message", r.Message)...)
	case DeliverySkipped:
		log.Info("document already sent", attrs...)
	default:
		log.Info("document delivered", attrs...)
	}
}

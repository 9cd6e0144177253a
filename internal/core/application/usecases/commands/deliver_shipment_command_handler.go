package commands

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/document"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
	"fulfillment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultDeliveryTimeout = 30 * time.Second
	filenameLockStripes    = 64
	alreadySentMessage     = "already sent"
)

// DeliveryConfig is the partner-facing part of delivery.
type DeliveryConfig struct {
	SupplierID string
	Directory  string
	Timeout    time.Duration
}

// DeliverShipmentCommandHandler drives the delivery state tracker around one transfer:
//
//	(none|ERROR|PENDING) -> PENDING -> UPLOADED | ERROR
//	UPLOADED -> skipped, or PENDING with force
//
// Transfer failures are recorded and returned as a DeliveryError result, never as an error.
// Attempts for the same filename are serialized within the process.
type DeliverShipmentCommandHandler struct {
	uowFactory DeliveryUoWFactory
	transfer   ports.Transfer
	builder    services.DispatchDocumentBuilder
	cfg        DeliveryConfig
	metrics    *metrics.Metrics

	locks [filenameLockStripes]sync.Mutex
}

func NewDeliverShipmentCommandHandler(
	uowFactory DeliveryUoWFactory,
	transfer ports.Transfer,
	builder services.DispatchDocumentBuilder,
	cfg DeliveryConfig,
	m *metrics.Metrics,
) (*DeliverShipmentCommandHandler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if transfer == nil {
		return nil, errs.NewValueIsRequiredError("transfer")
	}
	if strings.TrimSpace(cfg.SupplierID) == "" {
		return nil, errs.NewConfigurationError("SUPPLIER_ID", "is required")
	}
	if strings.TrimSpace(cfg.Directory) == "" {
		return nil, errs.NewConfigurationError("SFTP_OUTGOING_DIR", "is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDeliveryTimeout
	}

	return &DeliverShipmentCommandHandler{
		uowFactory: uowFactory,
		transfer:   transfer,
		builder:    builder,
		cfg:        cfg,
		metrics:    m,
	}, nil
}

func (h *DeliverShipmentCommandHandler) Handle(ctx context.Context, cmd DeliverShipmentCommand) (res ShipmentResult, err error) {
	if err = cmd.Validate(); err != nil {
		return ShipmentResult{}, err
	}

	o, s := cmd.Order(), cmd.Shipment()
	doc, err := h.builder.BuildDispatchDocument(o, s, h.cfg.SupplierID)
	if err != nil {
		return ShipmentResult{}, err
	}

	ctx, span := tracing.Start(ctx, "DeliverShipment",
		attribute.String("shipment_id", s.ID().String()),
		attribute.String("filename", doc.Filename),
		attribute.Bool("force", cmd.Force()),
	)
	defer func() {
		span.SetAttributes(attribute.String("status", string(res.Status)))
		tracing.End(span, err)
	}()

	lock := h.lockFor(doc.Filename)
	lock.Lock()
	defer lock.Unlock()

	res = ShipmentResult{
		ShipmentID:  s.ID(),
		ContainerID: s.ContainerID(),
		Filename:    doc.Filename,
	}

	repo := h.uowFactory.Create().DocumentRepository()
	record, err := repo.Get(ctx, doc.Filename)
	if errors.Is(err, errs.ErrObjectNotFound) {
		record, err = document.NewDocument(doc.Filename, doc.DocType, o.ID(), o.ExternalRef(), s.ID(), []string{s.ContainerID()})
	}
	if err != nil {
		return ShipmentResult{}, err
	}

	if err = record.BeginAttempt(cmd.Force(), time.Now()); err != nil {
		if errors.Is(err, document.ErrAlreadyUploaded) {
			h.metrics.RecordDelivery(string(DeliverySkipped), 0)
			res.Status = DeliverySkipped
			res.Message = alreadySentMessage
			return res, nil
		}
		return ShipmentResult{}, err
	}
	if err = repo.Upsert(ctx, record); err != nil {
		return ShipmentResult{}, fmt.Errorf("record pending attempt: %w", err)
	}

	started := time.Now()
	transferErr := h.deliver(ctx, doc)
	elapsed := time.Since(started)

	// The outcome is recorded even when the caller has gone away.
	persistCtx := context.WithoutCancel(ctx)
	if transferErr != nil {
		if err = record.MarkFailed(transferErr.Error(), time.Now()); err != nil {
			return ShipmentResult{}, err
		}
		if err = repo.Upsert(persistCtx, record); err != nil {
			return ShipmentResult{}, fmt.Errorf("record failed attempt: %w", err)
		}
		h.metrics.RecordDelivery(string(DeliveryError), elapsed)
		span.RecordError(transferErr)
		res.Status = DeliveryError
		res.Message = record.ErrorMessage()
		return res, nil
	}

	if err = record.MarkUploaded(time.Now()); err != nil {
		return ShipmentResult{}, err
	}
	if err = repo.Upsert(persistCtx, record); err != nil {
		return ShipmentResult{}, fmt.Errorf("record upload: %w", err)
	}
	h.metrics.RecordDelivery(string(DeliveryUploaded), elapsed)
	res.Status = DeliveryUploaded
	return res, nil
}

// deliver bounds the transfer by the configured timeout and turns every failure into a
// *errs.TransportError.
func (h *DeliverShipmentCommandHandler) deliver(ctx context.Context, doc services.DispatchDocument) error {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	err := h.transfer.Deliver(ctx, h.cfg.Directory, doc.Filename, doc.Content)
	if err == nil {
		return nil
	}

	var te *errs.TransportError
	if errors.As(err, &te) {
		return err
	}
	if ctx.Err() != nil {
		err = errors.Join(err, ctx.Err())
	}
	return errs.NewTransportError(errs.StageWrite, doc.Filename, err)
}

func (h *DeliverShipmentCommandHandler) lockFor(filename string) *sync.Mutex {
	f := fnv.New32a()
	_, _ = f.Write([]byte(filename))
	return &h.locks[f.Sum32()%filenameLockStripes]
}

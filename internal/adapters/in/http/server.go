package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/generated/servers"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	OrderDispatcher interface {
		Handle(ctx context.Context, cmd commands.DispatchOrderCommand) ([]commands.ShipmentResult, error)
	}
	ShipmentsReader interface {
		Handle(ctx context.Context, q queries.GetOrderShipmentsQuery) ([]queries.GetOrderShipmentsQueryResponse, error)
	}
	DocumentsReader interface {
		Handle(ctx context.Context, q queries.GetOrderDocumentsQuery) ([]queries.GetOrderDocumentsQueryResponse, error)
	}
	RejectedOrdersReader interface {
		Handle(ctx context.Context, q queries.GetRejectedOrdersQuery) ([]queries.GetRejectedOrdersQueryResponse, error)
	}
)

const defaultRejectedOrdersLimit = 100

// Server implements servers.ServerInterface on top of the application use cases.
type Server struct {
	// Command handlers
	createOrderHandler   OrderCreator
	dispatchOrderHandler OrderDispatcher

	// Query handlers
	getOrderShipmentsHandler ShipmentsReader
	getOrderDocumentsHandler DocumentsReader
	getRejectedOrdersHandler RejectedOrdersReader

	validate *validator.Validate
}

func NewServer(
	createOrderHandler OrderCreator,
	dispatchOrderHandler OrderDispatcher,
	getOrderShipmentsHandler ShipmentsReader,
	getOrderDocumentsHandler DocumentsReader,
	getRejectedOrdersHandler RejectedOrdersReader,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		dispatchOrderHandler:     dispatchOrderHandler,
		getOrderShipmentsHandler: getOrderShipmentsHandler,
		getOrderDocumentsHandler: getOrderDocumentsHandler,
		getRejectedOrdersHandler: getRejectedOrdersHandler,
		validate:                 validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.CreateOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(body); err != nil {
		return errorJSON(ctx, http.StatusUnprocessableEntity, err.Error())
	}

	orderID := kernel.NewUUID()
	if body.Id != nil {
		var err error
		if orderID, err = kernel.UUIDFromBytes(body.Id[:]); err != nil {
			return errorJSON(ctx, http.StatusUnprocessableEntity, err.Error())
		}
	}
	orderedAt := time.Now()
	if body.OrderedAt != nil {
		orderedAt = *body.OrderedAt
	}

	lines := make([]commands.OrderLineInput, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = commands.OrderLineInput{
			LineNumber:     l.LineNumber,
			SupplierItemID: deref(l.SupplierItemId),
			GTIN:           deref(l.Gtin),
			Quantity:       l.Quantity,
		}
		if l.UnitPrice != nil {
			lines[i].UnitPrice = *l.UnitPrice
		}
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, body.ExternalRef, commands.RecipientInput{
		Name:        body.Recipient.Name,
		Street:      body.Recipient.Street,
		City:        body.Recipient.City,
		PostalCode:  body.Recipient.PostalCode,
		CountryCode: body.Recipient.CountryCode,
	}, body.Currency, orderedAt, lines)
	if err != nil {
		return errorJSON(ctx, http.StatusUnprocessableEntity, "Invalid order data: "+err.Error())
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorFromDomain(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, servers.CreatedOrder{Id: orderID.Bytes()})
}

// DispatchOrder handles POST /api/v1/orders/{orderId}/dispatch. The body is optional;
// omitted fields fall back to the configured defaults.
func (s *Server) DispatchOrder(ctx echo.Context, orderId servers.OrderId) error {
	orderID, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid order id")
	}

	var body servers.DispatchOrderJSONRequestBody
	if err = bindOptional(ctx, &body); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid request body")
	}
	if err = s.validate.Struct(body); err != nil {
		return errorJSON(ctx, http.StatusUnprocessableEntity, err.Error())
	}

	force := body.Force != nil && *body.Force
	cmd, err := commands.NewDispatchOrderCommand(orderID, body.Capacity, body.AllowSplit, deref(body.Carrier), force)
	if err != nil {
		return errorFromDomain(ctx, err, "Invalid dispatch request")
	}

	results, err := s.dispatchOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorFromDomain(ctx, err, "Failed to dispatch order")
	}

	response := servers.DispatchResponse{
		OrderId: orderId,
		Results: make([]servers.ShipmentResult, len(results)),
	}
	for i, r := range results {
		response.Results[i] = servers.ShipmentResult{
			ShipmentId:  r.ShipmentID.Bytes(),
			ContainerId: r.ContainerID,
			Status:      servers.ShipmentResultStatus(r.Status),
			Filename:    r.Filename,
			Message:     optional(r.Message),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderShipments handles GET /api/v1/orders/{orderId}/shipments.
func (s *Server) GetOrderShipments(ctx echo.Context, orderId servers.OrderId) error {
	orderID, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid order id")
	}
	query, err := queries.NewGetOrderShipmentsQuery(orderID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	shipments, err := s.getOrderShipmentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorFromDomain(ctx, err, "Failed to retrieve shipments")
	}

	response := make([]servers.Shipment, len(shipments))
	for i, sh := range shipments {
		createdAt := sh.CreatedAt
		items := make([]servers.ShipmentItem, len(sh.Items))
		for j, it := range sh.Items {
			items[j] = servers.ShipmentItem{
				LineNumber:     it.LineNumber,
				SupplierItemId: it.SupplierItemID,
				Gtin:           it.GTIN,
				Quantity:       it.Quantity,
			}
		}

		response[i] = servers.Shipment{
			Id:             sh.ID.Bytes(),
			SequenceIndex:  sh.SequenceIndex,
			ContainerId:    sh.ContainerID,
			DocumentNumber: sh.DocumentNumber,
			Carrier:        sh.Carrier,
			TrackingNumber: sh.TrackingNumber,
			PackageType:    sh.PackageType,
			CreatedAt:      &createdAt,
			TotalQuantity:  sh.TotalQuantity,
			Items:          items,
			Label: servers.Label{
				ContainerId:    sh.Label.ContainerID,
				PrinterPayload: sh.Label.PrinterPayload,
				HumanReadable:  sh.Label.HumanReadable,
			},
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderDocuments handles GET /api/v1/orders/{orderId}/documents.
func (s *Server) GetOrderDocuments(ctx echo.Context, orderId servers.OrderId) error {
	orderID, err := kernel.UUIDFromBytes(orderId[:])
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, "Invalid order id")
	}
	query, err := queries.NewGetOrderDocumentsQuery(orderID)
	if err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	documents, err := s.getOrderDocumentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorFromDomain(ctx, err, "Failed to retrieve documents")
	}

	response := make([]servers.Document, len(documents))
	for i, d := range documents {
		response[i] = servers.Document{
			Filename:     d.Filename,
			DocType:      d.DocType,
			ShipmentId:   d.ShipmentID.Bytes(),
			ContainerIds: d.ContainerIDs,
			Status:       d.Status,
			SentAt:       d.SentAt,
			ErrorMessage: optional(d.ErrorMessage),
			Attempts:     d.Attempts,
			UpdatedAt:    d.UpdatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetRejectedOrders handles GET /api/v1/orders/rejected.
func (s *Server) GetRejectedOrders(ctx echo.Context, params servers.GetRejectedOrdersParams) error {
	limit := defaultRejectedOrdersLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	query, err := queries.NewGetRejectedOrdersQuery(limit)
	if err != nil {
		return errorFromDomain(ctx, err, "Invalid limit")
	}

	rejected, err := s.getRejectedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorFromDomain(ctx, err, "Failed to retrieve rejected orders")
	}

	response := make([]servers.RejectedOrder, len(rejected))
	for i, r := range rejected {
		response[i] = servers.RejectedOrder{
			OrderId:     r.OrderID.Bytes(),
			ExternalRef: r.ExternalRef,
			RejectedAt:  r.RejectedAt,
			Reason:      r.Reason,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func bindOptional(ctx echo.Context, dst any) error {
	req := ctx.Request()
	if req.Body == nil || req.ContentLength == 0 {
		return nil
	}
	if err := ctx.Bind(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

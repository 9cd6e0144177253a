package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Store a purchased order
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// List undispatched orders whose last dispatch was rejected
	// (GET /api/v1/orders/rejected)
	GetRejectedOrders(ctx echo.Context, params GetRejectedOrdersParams) error
	// Pack an order and deliver one dispatch advice per shipment
	// (POST /api/v1/orders/{orderId}/dispatch)
	DispatchOrder(ctx echo.Context, orderId OrderId) error
	// List the delivery records of an order's documents
	// (GET /api/v1/orders/{orderId}/documents)
	GetOrderDocuments(ctx echo.Context, orderId OrderId) error
	// List an order's shipments with label descriptions
	// (GET /api/v1/orders/{orderId}/shipments)
	GetOrderShipments(ctx echo.Context, orderId OrderId) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// CreateOrder converts echo context to params.
func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

// GetRejectedOrders converts echo context to params.
func (w *ServerInterfaceWrapper) GetRejectedOrders(ctx echo.Context) error {
	var params GetRejectedOrdersParams

	err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.GetRejectedOrders(ctx, params)
}

// DispatchOrder converts echo context to params.
func (w *ServerInterfaceWrapper) DispatchOrder(ctx echo.Context) error {
	orderId, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.DispatchOrder(ctx, orderId)
}

// GetOrderDocuments converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrderDocuments(ctx echo.Context) error {
	orderId, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetOrderDocuments(ctx, orderId)
}

// GetOrderShipments converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrderShipments(ctx echo.Context) error {
	orderId, err := bindOrderId(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetOrderShipments(ctx, orderId)
}

func bindOrderId(ctx echo.Context) (OrderId, error) {
	var orderId OrderId
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return orderId, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderId, nil
}

// EchoRouter is implemented by both echo.Echo and echo.Group.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers the handlers with a path prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/orders", wrapper.CreateOrder)
	router.GET(baseURL+"/api/v1/orders/rejected", wrapper.GetRejectedOrders)
	router.POST(baseURL+"/api/v1/orders/:orderId/dispatch", wrapper.DispatchOrder)
	router.GET(baseURL+"/api/v1/orders/:orderId/documents", wrapper.GetOrderDocuments)
	router.GET(baseURL+"/api/v1/orders/:orderId/shipments", wrapper.GetOrderShipments)
}

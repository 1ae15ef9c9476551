package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/logging"
	authmw "github.com/Skotchmaster/sweetcrust/internal/middleware/auth"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_order")

	var req transport.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(l, "create_order_failed", err)
	}

	o, err := h.Svc.Create(ctx, authmw.IdentityFrom(c), service.OrderInput{
		CustomerName: req.CustomerName,
		ProductID:    uint(req.ProductID),
		Quantity:     int(req.Quantity),
		OrderDate:    req.OrderDate,
		Status:       req.Status,
	})
	if err != nil {
		return fail(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "product_id", o.ProductID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list_orders")

	orders, err := h.Svc.List(ctx, authmw.IdentityFrom(c))
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_order_status")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "update_order_status_failed", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(l, "update_order_status_failed", err)
	}

	o, err := h.Svc.SetStatus(ctx, authmw.IdentityFrom(c), id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_failed", err)
	}

	l.Info("update_order_status_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}

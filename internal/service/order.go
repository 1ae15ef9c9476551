package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/metrics"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

var orderDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type OrderService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type OrderInput struct {
	CustomerName string
	ProductID    uint
	Quantity     int
	OrderDate    string
	Status       string
}

func (s *OrderService) Create(ctx context.Context, caller *tokens.Identity, in OrderInput) (*models.Order, error) {
	if err := tokens.RequireRole(caller, models.RoleStaff, models.RoleAdmin); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, apperr.Validation("customer_name is required")
	}
	if in.ProductID == 0 {
		return nil, apperr.Validation("product_id is required")
	}
	if in.Quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1")
	}
	date, err := ParseOrderDate(in.OrderDate)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		CustomerName: name,
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		OrderDate:    date,
		Status:       models.StatusOrPending(in.Status),
		CreatedBy:    caller.ID,
	}
	if err := s.Repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	publish(ctx, s.Events, TopicOrderEvents, idKey(o.ID), map[string]any{
		"type":      "order_created",
		"orderID":   o.ID,
		"productID": o.ProductID,
		"quantity":  o.Quantity,
		"status":    o.Status,
		"createdBy": o.CreatedBy,
	})
	return o, nil
}

// List shows admins every order and everyone else only their own.
func (s *OrderService) List(ctx context.Context, caller *tokens.Identity) ([]models.OrderView, error) {
	if err := tokens.RequireRole(caller, models.RoleStaff, models.RoleAdmin); err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return s.Repo.ListOrders(ctx, nil)
	}
	own := caller.ID
	return s.Repo.ListOrders(ctx, &own)
}

// SetStatus allows any transition between the three states, including
// reopening a completed or cancelled order.
func (s *OrderService) SetStatus(ctx context.Context, caller *tokens.Identity, id uint, status string) (*models.Order, error) {
	if err := tokens.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	next := models.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, apperr.Validation("status must be one of Pending, Completed, Cancelled")
	}

	o, prev, err := s.Repo.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(prev), string(next)).Inc()
	publish(ctx, s.Events, TopicOrderEvents, idKey(o.ID), map[string]any{
		"type":    "order_status_changed",
		"orderID": o.ID,
		"from":    prev,
		"to":      next,
	})
	return o, nil
}

func ParseOrderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Validation("order_date is required")
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("order_date %q is not a valid date", raw)
}

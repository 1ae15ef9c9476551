package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
)

const orderViewColumns = "orders.id, orders.customer_name, orders.product_id, " +
	"products.name AS product_name, products.price AS price, orders.quantity, " +
	"orders.order_date, orders.status, orders.created_by, orders.created_at"

var errNoSuchProduct = apperr.Validation("product does not exist")

// CreateOrder checks the product and inserts the order in one transaction.
// The FOR SHARE lock keeps a concurrent DeleteProduct from removing the
// product between the check and the insert.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		err := locked(tx, "SHARE").Select("id").First(&p, o.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoSuchProduct
		}
		if err != nil {
			return apperr.Store("select product for order", err)
		}

		if err := tx.Create(o).Error; err != nil {
			if isForeignKeyViolation(err) {
				return errNoSuchProduct
			}
			return apperr.Store("insert order", err)
		}
		return nil
	})
}

// ListOrders returns orders newest first. A nil createdBy lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, createdBy *uint) ([]models.OrderView, error) {
	out := make([]models.OrderView, 0)

	q := r.DB.WithContext(ctx).
		Table("orders").
		Select(orderViewColumns).
		Joins("JOIN products ON products.id = orders.product_id")
	if createdBy != nil {
		q = q.Where("orders.created_by = ?", *createdBy)
	}
	q = q.Order("orders.order_date DESC").Order("orders.id DESC")

	if err := q.Scan(&out).Error; err != nil {
		return nil, apperr.Store("select orders", err)
	}
	return out, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, apperr.Store("select order", err)
	}
	return &o, nil
}

// UpdateOrderStatus returns the updated order together with the status it had
// before the change.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	var (
		o    models.Order
		prev models.OrderStatus
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := locked(tx, "UPDATE").First(&o, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("order")
		}
		if err != nil {
			return apperr.Store("select order for update", err)
		}
		prev = o.Status

		if err := tx.Model(&o).Update("status", status).Error; err != nil {
			return apperr.Store("update order status", err)
		}
		o.Status = status
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return &o, prev, nil
}

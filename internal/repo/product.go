package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/util"
)

var errProductInUse = apperr.Conflict("product is referenced by existing orders")

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, apperr.Store("select products", err)
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, apperr.Store("select product", err)
	}
	return &p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return apperr.Store("insert product", err)
	}
	return nil
}

// UpdateProduct loads the row under lock, lets apply mutate it and saves the
// result in the same transaction.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, apply func(*models.Product) error) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := locked(tx, "UPDATE").First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product")
		}
		if err != nil {
			return apperr.Store("select product for update", err)
		}
		if err := apply(&p); err != nil {
			return err
		}
		if err := tx.Save(&p).Error; err != nil {
			return apperr.Store("update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct runs the existence check, the reference check and the delete
// in one transaction. On Postgres the product row is locked FOR UPDATE, which
// blocks CreateOrder's FOR SHARE lock on the same row until we commit.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := locked(tx, "UPDATE").First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("product")
		}
		if err != nil {
			return apperr.Store("select product for delete", err)
		}

		var refs int64
		if err := tx.Model(&models.Order{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return apperr.Store("count product orders", err)
		}
		if refs > 0 {
			return errProductInUse
		}

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return errProductInUse
			}
			return apperr.Store("delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProducts is a plain substring match on name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, page util.Page) ([]models.Product, error) {
	items := make([]models.Product, 0)
	like := "%" + escapeLike(strings.TrimSpace(q)) + "%"

	op := "LIKE"
	if r.DB.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}
	cond := fmt.Sprintf("name %s ? ESCAPE '\\' OR description %s ? ESCAPE '\\'", op, op)

	tx := r.DB.WithContext(ctx).Where(cond, like, like).Order("name ASC").Order("id ASC")
	if page.Size > 0 {
		tx = tx.Offset(page.From).Limit(page.Size)
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, apperr.Store("search products", err)
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
	"github.com/Skotchmaster/sweetcrust/internal/metrics"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
	"github.com/Skotchmaster/sweetcrust/internal/util"
)


// numeric(10,2) upper bound.
var maxPrice = decimal.New(1, 8)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Index  ProductIndex
	Images ImageStore
}

// ProductInput carries the fields a caller supplied. Nil means "not supplied".
// An empty ImageURL keeps the stored image on update.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    string
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) Create(ctx context.Context, caller *tokens.Identity, in ProductInput) (*models.Product, error) {
	if err := tokens.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, apperr.Validation("name is required")
	}
	if in.Price == nil {
		return nil, apperr.Validation("price is required")
	}

	p := &models.Product{ImageURL: in.ImageURL}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_created", p)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, caller *tokens.Identity, id uint, in ProductInput) (*models.Product, error) {
	if err := tokens.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	var prevImage string
	p, err := s.Repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		prevImage = p.ImageURL
		return applyProductInput(p, in)
	})
	if err != nil {
		return nil, err
	}
	if prevImage != p.ImageURL {
		s.discardImage(ctx, prevImage)
	}

	s.afterWrite(ctx, "product_updated", p)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, caller *tokens.Identity, id uint) (*models.Product, error) {
	if err := tokens.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	p, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrReferentialConflict) {
			metrics.ProductDeleteConflicts.Inc()
		}
		return nil, err
	}

	s.discardImage(ctx, p.ImageURL)

	publish(ctx, s.Events, TopicProductEvents, idKey(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_unindex_failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// Search uses the search index when there is one and a substring match on
// the database otherwise, or when the index fails.
func (s *CatalogService) Search(ctx context.Context, q string, page util.Page) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.Repo.ListProducts(ctx)
	}
	if s.Index != nil {
		items, err := s.Index.Search(ctx, q, page)
		if err == nil {
			return items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, page)
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	publish(ctx, s.Events, TopicProductEvents, idKey(p.ID), map[string]any{
		"type":      eventType,
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price.StringFixed(2),
	})
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Error("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
}

// discardImage removes an image no product points at any more. Failures
// only leave an orphaned file behind.
func (s *CatalogService) discardImage(ctx context.Context, ref string) {
	if ref == "" || s.Images == nil {
		return
	}
	if err := s.Images.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logging.FromContext(ctx).Warn("image_delete_failed", "ref", ref, "error", err)
	}
}

func applyProductInput(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("name is required")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperr.Validation("price must not be negative")
		}
		price := in.Price.Round(2)
		if price.GreaterThanOrEqual(maxPrice) {
			return apperr.Validation("price is too large")
		}
		p.Price = models.NewMoney(price)
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	return nil
}

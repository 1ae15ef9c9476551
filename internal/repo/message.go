package repo

import (
	"context"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
)

func (r *GormRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Store("insert message", err)
	}
	return nil
}

func (r *GormRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	out := make([]models.Message, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Store("select messages", err)
	}
	return out, nil
}

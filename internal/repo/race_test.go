package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/testutil"
)

// Deleting a product while orders for it are being created must end in one
// of two states: the product is gone and no order points at it, or the delete
// was refused and every successful order is still there.
func TestDeleteProductRacesCreateOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("concurrent test")
	}

	backends := map[string]func(*testing.T) *gorm.DB{
		"sqlite":   testutil.NewDB,
		"postgres": testutil.NewPostgresDB,
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			r := New(open(t))
			staff := mustUser(t, r, "staff@x.com", models.RoleStaff)
			for round := 0; round < 20; round++ {
				raceDeleteAgainstOrders(t, r, staff.ID)
			}
		})
	}
}

func raceDeleteAgainstOrders(t *testing.T, r *GormRepo, by uint) {
	t.Helper()
	const creators = 4
	ctx := context.Background()
	p := mustProduct(t, r, "Bread", "2.00")

	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		deleteErr error
		createErr = make([]error, creators)
	)

	wg.Add(creators + 1)
	go func() {
		defer wg.Done()
		<-start
		_, deleteErr = r.DeleteProduct(ctx, p.ID)
	}()
	for i := 0; i < creators; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			createErr[i] = r.CreateOrder(ctx, &models.Order{
				CustomerName: "Jane",
				ProductID:    p.ID,
				Quantity:     1,
				OrderDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Status:       models.StatusPending,
				CreatedBy:    by,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for _, err := range createErr {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, apperr.ErrValidation)
	}

	var stored int64
	require.NoError(t, r.DB.Model(&models.Order{}).Where("product_id = ?", p.ID).Count(&stored).Error)
	require.EqualValues(t, created, stored)

	switch {
	case deleteErr == nil:
		require.Zero(t, created, "orders were created for a deleted product")
		_, err := r.GetProduct(ctx, p.ID)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	case errors.Is(deleteErr, apperr.ErrReferentialConflict):
		require.Positive(t, created)
		_, err := r.GetProduct(ctx, p.ID)
		require.NoError(t, err)
	default:
		t.Fatalf("unexpected delete error: %v", deleteErr)
	}
}

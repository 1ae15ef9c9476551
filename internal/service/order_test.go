package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

func TestOrderService_Create_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	staff := env.identity(t, "staff@x.com", models.RoleStaff)
	p := env.product(t, admin, "Bread", "1.00")
	ctx := context.Background()

	valid := OrderInput{CustomerName: "Jane", ProductID: p.ID, Quantity: 1, OrderDate: "2024-01-01"}

	tests := []struct {
		name   string
		mutate func(in *OrderInput)
	}{
		{name: "blank customer", mutate: func(in *OrderInput) { in.CustomerName = "  " }},
		{name: "missing product", mutate: func(in *OrderInput) { in.ProductID = 0 }},
		{name: "unknown product", mutate: func(in *OrderInput) { in.ProductID = 404 }},
		{name: "zero quantity", mutate: func(in *OrderInput) { in.Quantity = 0 }},
		{name: "negative quantity", mutate: func(in *OrderInput) { in.Quantity = -3 }},
		{name: "missing date", mutate: func(in *OrderInput) { in.OrderDate = "" }},
		{name: "bad date", mutate: func(in *OrderInput) { in.OrderDate = "01/02/2024" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := env.Orders.Create(ctx, staff, in)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := env.Orders.Create(ctx, nil, valid)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	orders, err := env.Orders.List(ctx, admin)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestOrderService_Create_StatusDefaultsToPending(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	staff := env.identity(t, "staff@x.com", models.RoleStaff)
	p := env.product(t, admin, "Bread", "1.00")
	ctx := context.Background()

	tests := []struct {
		in   string
		want models.OrderStatus
	}{
		{in: "", want: models.StatusPending},
		{in: "Shipped", want: models.StatusPending},
		{in: "cancelled", want: models.StatusPending},
		{in: "Completed", want: models.StatusCompleted},
		{in: "Cancelled", want: models.StatusCancelled},
	}

	for _, tt := range tests {
		o, err := env.Orders.Create(ctx, staff, OrderInput{
			CustomerName: " Jane ",
			ProductID:    p.ID,
			Quantity:     2,
			OrderDate:    "2024-01-01",
			Status:       tt.in,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, o.Status, "input %q", tt.in)
		assert.Equal(t, "Jane", o.CustomerName)
		assert.Equal(t, staff.ID, o.CreatedBy)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), o.OrderDate)
	}
}

func TestOrderService_List_RoleScoped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	alice := env.identity(t, "alice@x.com", models.RoleStaff)
	bob := env.identity(t, "bob@x.com", models.RoleStaff)
	p := env.product(t, admin, "Bread", "25.99")
	ctx := context.Background()

	for i, caller := range []*tokens.Identity{alice, bob, alice, admin} {
		_, err := env.Orders.Create(ctx, caller, OrderInput{
			CustomerName: fmt.Sprintf("Customer %d", i),
			ProductID:    p.ID,
			Quantity:     1,
			OrderDate:    fmt.Sprintf("2024-01-0%d", i+1),
		})
		require.NoError(t, err)
	}

	all, err := env.Orders.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Customer 3", all[0].CustomerName)
	assert.Equal(t, "Bread", all[0].ProductName)
	assert.Equal(t, "25.99", all[0].Price.StringFixed(2))

	mine, err := env.Orders.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, alice.ID, o.CreatedBy)
	}
	assert.Equal(t, "Customer 2", mine[0].CustomerName)

	bobs, err := env.Orders.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, bob.ID, bobs[0].CreatedBy)

	_, err = env.Orders.List(ctx, nil)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestOrderService_SetStatus_FullyConnected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	staff := env.identity(t, "staff@x.com", models.RoleStaff)
	p := env.product(t, admin, "Bread", "1.00")
	ctx := context.Background()

	for _, from := range models.Statuses {
		for _, to := range models.Statuses {
			o, err := env.Orders.Create(ctx, staff, OrderInput{
				CustomerName: "Jane",
				ProductID:    p.ID,
				Quantity:     1,
				OrderDate:    "2024-01-01",
				Status:       string(from),
			})
			require.NoError(t, err)
			require.Equal(t, from, o.Status)

			got, err := env.Orders.SetStatus(ctx, admin, o.ID, string(to))
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, got.Status)
		}
	}
}

func TestOrderService_SetStatus_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	staff := env.identity(t, "staff@x.com", models.RoleStaff)
	p := env.product(t, admin, "Bread", "1.00")
	ctx := context.Background()

	o, err := env.Orders.Create(ctx, staff, OrderInput{CustomerName: "Jane", ProductID: p.ID, Quantity: 1, OrderDate: "2024-01-01"})
	require.NoError(t, err)

	_, err = env.Orders.SetStatus(ctx, staff, o.ID, "Completed")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = env.Orders.SetStatus(ctx, admin, o.ID, "Done")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.Orders.SetStatus(ctx, admin, 999, "Completed")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := env.Repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestParseOrderDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2024-01-01", "2024-01-01T09:30", "2024-01-01T09:30:00", "2024-01-01T09:30:00+02:00"} {
		d, err := ParseOrderDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.UTC, d.Location())
	}

	_, err := ParseOrderDate("tomorrow")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

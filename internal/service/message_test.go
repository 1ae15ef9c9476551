package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
)

func TestMessageService(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	admin := env.identity(t, "admin@x.com", models.RoleAdmin)
	staff := env.identity(t, "staff@x.com", models.RoleStaff)
	ctx := context.Background()

	_, err := env.Msgs.Submit(ctx, MessageInput{Name: "Ann", Email: "ann@x.com"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.Msgs.Submit(ctx, MessageInput{Name: "Ann", Email: "ann", Message: "hi"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	m, err := env.Msgs.Submit(ctx, MessageInput{Name: "Ann", Email: "ann@x.com", Message: "Do you bake gluten free?"})
	require.NoError(t, err)
	require.NotZero(t, m.ID)

	_, err = env.Msgs.List(ctx, staff)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	all, err := env.Msgs.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "ann@x.com", all[0].Email)
	require.Contains(t, env.Events.types(), "message_received")
}

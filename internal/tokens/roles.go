package tokens

import (
	"fmt"
	"slices"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
)

// RequireRole fails with ErrUnauthenticated when there is no identity and
// with ErrForbidden when its role is not one of roles.
func RequireRole(id *Identity, roles ...models.Role) error {
	if id == nil {
		return apperr.ErrUnauthenticated
	}
	if slices.Contains(roles, id.Role) {
		return nil
	}
	if len(roles) == 1 && roles[0] == models.RoleAdmin {
		return apperr.Forbidden("admin only")
	}
	return fmt.Errorf("%w: role %s is not allowed", apperr.ErrForbidden, id.Role)
}

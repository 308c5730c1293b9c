package procurement

import (
	"github.com/google/uuid"

	"github.com/sparesuite/backend/internal/domain/shared"
)

// Actor is the authenticated caller as seen by the application layer
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID // uuid.Nil when the actor carries no tenant
	IsAdmin  bool
}

// ResolveTenantScope resolves the tenant a request operates on. This is the
// single scoping policy for every endpoint:
//   - non-admin actors always operate on their own tenant and may not name
//     another one;
//   - admin actors must name an explicit target tenant;
//   - an unresolvable tenant is a caller error, never an empty result.
func ResolveTenantScope(actor Actor, requestedTenantID string) (uuid.UUID, error) {
	if actor.UserID == uuid.Nil {
		return uuid.Nil, shared.ErrUnauthorized
	}

	if !actor.IsAdmin {
		if actor.TenantID == uuid.Nil {
			return uuid.Nil, shared.NewInvalidArgument("Actor has no tenant scope")
		}
		return actor.TenantID, nil
	}

	if requestedTenantID == "" {
		return uuid.Nil, shared.NewInvalidArgument("Admin requests must name a target tenant")
	}
	tenantID, err := uuid.Parse(requestedTenantID)
	if err != nil {
		return uuid.Nil, shared.NewInvalidArgument("Invalid tenant ID format")
	}
	return tenantID, nil
}

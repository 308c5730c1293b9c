package procurement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparesuite/backend/internal/domain/shared"
)

func TestResolveTenantScope_NonAdminUsesOwnTenant(t *testing.T) {
	own := uuid.New()
	actor := Actor{UserID: uuid.New(), TenantID: own}

	resolved, err := ResolveTenantScope(actor, "")
	require.NoError(t, err)
	assert.Equal(t, own, resolved)

	// A named tenant is ignored for non-admins, never honored
	resolved, err = ResolveTenantScope(actor, uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, own, resolved)
}

func TestResolveTenantScope_NonAdminWithoutTenant(t *testing.T) {
	actor := Actor{UserID: uuid.New()}
	_, err := ResolveTenantScope(actor, "")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
}

func TestResolveTenantScope_AdminMustNameTenant(t *testing.T) {
	actor := Actor{UserID: uuid.New(), TenantID: uuid.New(), IsAdmin: true}

	_, err := ResolveTenantScope(actor, "")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)

	target := uuid.New()
	resolved, err := ResolveTenantScope(actor, target.String())
	require.NoError(t, err)
	assert.Equal(t, target, resolved)
}

func TestResolveTenantScope_AdminWithMalformedTenant(t *testing.T) {
	actor := Actor{UserID: uuid.New(), IsAdmin: true}
	_, err := ResolveTenantScope(actor, "not-a-uuid")
	require.Error(t, err)
}

func TestResolveTenantScope_Unauthenticated(t *testing.T) {
	_, err := ResolveTenantScope(Actor{}, uuid.New().String())
	assert.Equal(t, shared.ErrUnauthorized, err)
}

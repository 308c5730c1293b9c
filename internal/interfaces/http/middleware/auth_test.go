package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparesuite/backend/internal/infrastructure/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		Issuer:          "sparesuite-backend",
		TokenExpiration: time.Hour,
	}
}

// authTestRouter mounts JWTAuth in front of a probe that reports the
// extracted caller.
func authTestRouter(cfg config.JWTConfig) (*gin.Engine, *AuthContext) {
	gin.SetMode(gin.TestMode)
	captured := &AuthContext{}
	engine := gin.New()
	engine.GET("/probe", JWTAuth(cfg), func(c *gin.Context) {
		*captured = GetAuthContext(c)
		c.Status(http.StatusOK)
	})
	return engine, captured
}

func TestJWTAuth_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := IssueToken(cfg, userID, tenantID, RoleAdmin)
	require.NoError(t, err)

	engine, captured := authTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, tenantID, captured.TenantID)
	assert.True(t, captured.IsAdmin())
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	engine, _ := authTestRouter(testJWTConfig())
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Secret = "different-secret"
	token, err := IssueToken(other, uuid.New(), uuid.New(), "user")
	require.NoError(t, err)

	engine, _ := authTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Issuer = "someone-else"
	token, err := IssueToken(other, uuid.New(), uuid.New(), "user")
	require.NoError(t, err)

	engine, _ := authTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAuthContext_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	ac := GetAuthContext(c)
	assert.Equal(t, uuid.Nil, ac.UserID)
	assert.False(t, ac.IsAdmin())
}

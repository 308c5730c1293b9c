package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sparesuite/backend/internal/infrastructure/config"
	"github.com/sparesuite/backend/internal/interfaces/http/dto"
)

const (
	authContextKey = "auth_context"
	bearerPrefix   = "Bearer "

	// RoleAdmin may query any tenant by naming it explicitly
	RoleAdmin = "admin"
)

// Claims is the JWT payload this service issues and accepts
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext is the authenticated caller extracted from the token
type AuthContext struct {
	UserID   uuid.UUID
	TenantID uuid.UUID // uuid.Nil when the token carries no tenant
	Role     string
}

// IsAdmin reports whether the caller holds the admin role
func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// GetAuthContext retrieves the caller from the gin context. The zero value
// means the request was not authenticated.
func GetAuthContext(c *gin.Context) AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if ac, ok := v.(AuthContext); ok {
			return ac
		}
	}
	return AuthContext{}
}

// JWTAuth validates the bearer token and stores the caller in the context
func JWTAuth(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}

		tokenString := strings.TrimPrefix(header, bearerPrefix)
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Secret), nil
		}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid token subject")
			return
		}

		ac := AuthContext{
			UserID: userID,
			Role:   claims.Role,
		}
		if claims.TenantID != "" {
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				abortUnauthorized(c, "Invalid token tenant")
				return
			}
			ac.TenantID = tenantID
		}

		c.Set(authContextKey, ac)
		c.Next()
	}
}

// IssueToken signs a token for the given identity. The auth provider
// issuing production tokens lives outside this service; this helper keeps
// tests and local tooling on the same claim shape.
func IssueToken(cfg config.JWTConfig, userID, tenantID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID.String(),
		TenantID: tenantID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse("UNAUTHORIZED", message, c.GetString("X-Request-ID")))
}

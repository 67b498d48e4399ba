package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/infrastructure/auth"
	"github.com/mrpcore/backend/internal/interfaces/http/dto"
)

// Auth context keys
const (
	AuthOrgIDKey  = "auth_org_id"
	AuthUserIDKey = "auth_user_id"
	AuthNameKey   = "auth_name"
	AuthRoleKey   = "auth_role"

	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// JWTAuth authenticates requests with a bearer token and stores the member
// identity in the gin context
func JWTAuth(jwtService *auth.JWTService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authHeader)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(header, bearerPrefix)

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if logger != nil {
				logger.Debug("token validation failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		orgID, err := uuid.Parse(claims.OrgID)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(AuthOrgIDKey, orgID)
		c.Set(AuthUserIDKey, userID)
		c.Set(AuthNameKey, claims.Name)
		c.Set(AuthRoleKey, claims.Role)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}

// GetOrgID returns the authenticated organization id
func GetOrgID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(AuthOrgIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(AuthUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

const (
	bearerSchema = "Bearer "

	userIDKey = "user_id"
	userKey   = "user"
	adminKey  = "admin_email"
)

// UserLoader resolves the account behind a token.
type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerSchema) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerSchema):])
}

// NewAuthMiddleware requires a valid user token whose account still exists.
// Disabled accounts pass; they can still manage themselves.
func NewAuthMiddleware(jwtSecret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := auth.ValidateToken(token, jwtSecret)
		if err != nil || claims.UserID == uuid.Nil {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		u, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Warn("Token for unknown user", zap.String("user_id", claims.UserID.String()))
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(userIDKey, u.ID)
		c.Set(userKey, u)
		c.Next()
	}
}

// OptionalUserID decodes a bearer token when present and valid. Public
// endpoints use it to recognise the resume owner.
func OptionalUserID(c *gin.Context, jwtSecret string) (uuid.UUID, bool) {
	token := BearerToken(c)
	if token == "" {
		return uuid.Nil, false
	}
	claims, err := auth.ValidateToken(token, jwtSecret)
	if err != nil || claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// AdminMiddleware answers 401 without a token and 403 for anything that is
// not a valid admin token.
func AdminMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Admin token required")
			return
		}
		claims, err := auth.ValidateToken(token, jwtSecret)
		if err != nil || !claims.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access denied")
			return
		}
		c.Set(adminKey, claims.Email)
		c.Next()
	}
}

// RateLimitMiddleware limits requests per client IP and route.
func RateLimitMiddleware(limiter auth.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())

		allowed, remaining, resetTime, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// fail open
			log.Error("Rate limiter error", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))
		if !allowed {
			abort(c, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUser returns the account loaded by NewAuthMiddleware.
func GetUser(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

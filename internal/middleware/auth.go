package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/types"
)

const (
	userIDKey = "user_id"
	claimsKey = "claims"
)

// TokenValidator is an interface for validating auth tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// RequireAuth rejects anonymous requests. It expects OptionalAuth to have run
// earlier in the chain.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.DetailResponse{Detail: "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the user when a token is sent and lets anonymous
// requests through. A token that is sent but invalid is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator) {
			c.Next()
		}
	}
}

// authenticate stores the claims when an Authorization header is present.
// It aborts and returns false when the header is malformed or the token invalid.
func authenticate(c *gin.Context, validator TokenValidator) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		return true
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || (scheme != "Token" && scheme != "Bearer") || strings.TrimSpace(token) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DetailResponse{Detail: "Invalid authorization header format."})
		return false
	}

	claims, err := validator.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DetailResponse{Detail: err.Error()})
		return false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(claimsKey, claims)
	return true
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// Claims returns the token claims of the authenticated request.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}

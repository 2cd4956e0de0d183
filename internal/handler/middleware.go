package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/domain"
	"github.com/smilemovies/account-service/internal/dto"
	"github.com/smilemovies/account-service/internal/utils"
)

const (
	accountIDKey = "account_id"
	claimsKey    = "session_claims"
)

// Authenticate verifies the session credential from the authToken cookie and
// stores the decoded claims in the request context. Any structural, signature
// or expiry failure is a 401; the guard itself is just SessionManager.Verify,
// independent of the framework.
func Authenticate(sessions *utils.SessionManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, err := c.Cookie(cookieName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "No session credential provided",
			})
			c.Abort()
			return
		}

		claims, err := sessions.Verify(credential)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set(accountIDKey, claims.AccountID)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// RequireAdmin rejects authenticated requests whose session lacks the admin
// claim. Must run after Authenticate.
func RequireAdmin(sessions *utils.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := sessionClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "No session claims in context",
			})
			c.Abort()
			return
		}

		if err := sessions.RequireAdmin(claims); err != nil {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "Admin privileges required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// accountID returns the authenticated account id set by Authenticate
func accountID(c *gin.Context) string {
	id, _ := c.Get(accountIDKey)
	if s, ok := id.(string); ok {
		return s
	}
	return ""
}

// sessionClaims returns the decoded claims set by Authenticate
func sessionClaims(c *gin.Context) *domain.SessionClaims {
	v, _ := c.Get(claimsKey)
	if claims, ok := v.(*domain.SessionClaims); ok {
		return claims
	}
	return nil
}

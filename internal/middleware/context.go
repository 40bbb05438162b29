package middleware

import (
	"github.com/gin-gonic/gin"

	"stackassist-backend/internal/models"
)

// Keys set on the gin context by the authentication chain.
const (
	ContextUserID        = "userID"
	ContextUserEmail     = "userEmail"
	ContextEmailVerified = "emailVerified"
	ContextSession       = "sessionID"
	ContextPrincipal     = "principal"
)

// SessionHeader carries the id returned by login, register or session start.
const SessionHeader = "X-Session-ID"

// ErrorResponse mirrors api.ErrorResponse; middleware cannot import the api package.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// IdentityFrom returns the identity stored by VerifyToken.
func IdentityFrom(c *gin.Context) models.Identity {
	return models.Identity{
		UserID:        c.GetString(ContextUserID),
		Email:         c.GetString(ContextUserEmail),
		EmailVerified: c.GetBool(ContextEmailVerified),
	}
}

// PrincipalFrom returns the principal resolved by AccessMiddleware.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, ok := c.Get(ContextPrincipal)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := value.(models.Principal)
	return p, ok
}

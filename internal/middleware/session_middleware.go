package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackassist-backend/internal/core"
)

// SessionToucher records activity on a session.
type SessionToucher interface {
	Touch(sessionID, userID string) error
}

// SessionMiddleware restarts the inactivity countdown of the caller's session. When
// enforced, a request without a live session is rejected; otherwise the header is
// optional and unknown sessions are ignored.
func SessionMiddleware(sessions SessionToucher, enforced bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			if enforced {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: core.ErrSessionExpired.Error(), Details: SessionHeader + " header is required"})
				return
			}
			c.Next()
			return
		}

		if err := sessions.Touch(sessionID, c.GetString(ContextUserID)); err != nil && enforced {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: core.ErrSessionExpired.Error()})
			return
		}
		c.Set(ContextSession, sessionID)
		c.Next()
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/metrics"
	"stackassist-backend/internal/models"
)

// PrincipalResolver decides which tenant an authenticated caller acts on.
type PrincipalResolver interface {
	Resolve(ctx context.Context, identity models.Identity) (models.Principal, error)
}

// AccessMiddleware resolves the caller's principal and stores it on the context.
// Callers whose team membership is not active are rejected with 403.
func AccessMiddleware(resolver PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		principal, err := resolver.Resolve(c.Request.Context(), identity)
		if err != nil {
			metrics.RecordAccessDecision("denied")
			if !errors.Is(err, core.ErrAccessDenied) {
				logger.Error("access resolution failed", zap.String("uid", identity.UserID), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: core.ErrAccessDenied.Error()})
			return
		}
		metrics.RecordAccessDecision(principal.Role)
		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// callerFields describes who made the request as far as the auth chain got: uid after
// VerifyToken, session after SessionMiddleware, tenant and role after AccessMiddleware.
func callerFields(c *gin.Context) []zap.Field {
	var fields []zap.Field
	if uid := c.GetString(ContextUserID); uid != "" {
		fields = append(fields, zap.String("uid", uid))
	}
	if sessionID := c.GetString(ContextSession); sessionID != "" {
		fields = append(fields, zap.String("sessionId", sessionID))
	}
	if p, ok := PrincipalFrom(c); ok {
		fields = append(fields, zap.String("tenantId", p.TenantID), zap.String("role", p.Role))
		if p.MemberID != "" {
			fields = append(fields, zap.String("memberId", p.MemberID))
		}
	}
	return fields
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// RequestLogger writes one line per request once the handler chain is done. Server
// errors log at error level, client errors at warn.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		panic("RequestLogger requires a non-nil zap.Logger instance")
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status_code", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		fields = append(fields, callerFields(c)...)
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("gin_errors", c.Errors.String()))
		}

		if ce := logger.Check(levelForStatus(status), "Incoming Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

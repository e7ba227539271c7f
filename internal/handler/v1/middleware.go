package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/service"
	"github.com/dentavia/dentavia/pkg/auth"
	"github.com/dentavia/dentavia/pkg/metrics"
)

const claimsKey = "claims"

// Authenticated validates the bearer token and stores the claims for
// downstream handlers.
func Authenticated(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid authorization header format"})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Use after
// Authenticated.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})
	}
}

func claimsFrom(c *gin.Context) *domain.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*domain.Claims)
	if !ok {
		return nil
	}
	return claims
}

// actorID returns the authenticated user's ID; aborts with 401 when the
// route is missing the auth middleware.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	claims := claimsFrom(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return uuid.Nil, false
	}
	return claims.UserID, true
}

var auditActions = map[string]domain.AuditAction{
	http.MethodPost:   domain.ActionCreate,
	http.MethodPut:    domain.ActionUpdate,
	http.MethodPatch:  domain.ActionUpdate,
	http.MethodDelete: domain.ActionDelete,
}

// Audited records every authenticated mutating request in the audit trail.
// Use after Authenticated; reads are not logged.
func Audited(audits *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, ok := auditActions[c.Request.Method]
		if !ok {
			return
		}
		claims := claimsFrom(c)
		if claims == nil {
			return
		}

		audits.LogAsync(c.Request.Context(), service.AuditEntry{
			UserID:       claims.UserID,
			UserRole:     string(claims.Role),
			Action:       string(action),
			ResourceType: c.FullPath(),
			ResourceID:   c.Param("appointmentID"),
			IPAddress:    c.ClientIP(),
			RequestID:    c.GetHeader("X-Request-ID"),
			StatusCode:   c.Writer.Status(),
		})
	}
}

// Observe records request counts, latency, and in-flight gauge.
func Observe(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		collector.InFlightGauge.Inc()
		defer collector.InFlightGauge.Dec()

		c.Next()

		// FullPath avoids a label per UUID
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		collector.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		collector.RequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

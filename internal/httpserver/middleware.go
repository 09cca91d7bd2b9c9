package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/domain"
	"glalex-shop/internal/session"
)

const (
	sessionHeader = "X-Session-ID"
	roleKey       = "role"
	tokenKey      = "token"
	sessionKey    = "session"
)

// sessionMiddleware reads the opaque session id, issuing one when the
// client has none yet. The id is always echoed back so the client can
// persist it.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(sessionHeader))
		if sid == "" {
			sid = session.NewSessionID()
		}
		c.Set(sessionKey, sid)
		c.Header(sessionHeader, sid)
		c.Next()
	}
}

// identifyMiddleware resolves the acting role from the bearer token when
// one is present. Anonymous requests continue with the zero Role, which
// acts as a plain customer.
func identifyMiddleware(accounts AccountService, roles RoleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			c.Abort()
			return
		}
		u, err := accounts.LookupByToken(c.Request.Context(), token)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		role, err := roles.Resolve(c.Request.Context(), *u)
		if err != nil {
			fail(c, err)
			c.Abort()
			return
		}
		c.Set(roleKey, role)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// requireAuth rejects anonymous requests.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(roleKey); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentRole(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireCourier() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentRole(c).IsActiveCourier() {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentRole returns the resolved role, or the zero (customer) Role for
// anonymous requests.
func currentRole(c *gin.Context) domain.Role {
	if v, ok := c.Get(roleKey); ok {
		return v.(domain.Role)
	}
	return domain.Role{}
}

func currentSession(c *gin.Context) string {
	if v, ok := c.Get(sessionKey); ok {
		return v.(string)
	}
	return ""
}

func currentToken(c *gin.Context) string {
	if v, ok := c.Get(tokenKey); ok {
		return v.(string)
	}
	return ""
}

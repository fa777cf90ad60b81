package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type" // "session" or "bearer"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/health":            true,
		"/ping":              true,
		"/api/auth/login":    true,
		"/api/auth/register": true,
		"/api/auth/csrf":     true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Try Bearer token first (for API clients)
		if user := m.tryBearerAuth(c); user != nil {
			m.setUserContext(c, user.ID, user.Role, AuthTypeBearer)
			c.Next()
			return
		}

		// Try session auth (for browser clients)
		if m.sessionManager != nil && m.sessionManager.IsAuthenticated(c.Request) {
			m.setUserContext(c,
				m.sessionManager.GetUserID(c.Request),
				m.sessionManager.GetUserRole(c.Request),
				AuthTypeSession)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// RequireLibrarian gates catalog-management and reservation-approval routes.
// Must run after Handler.
func RequireLibrarian() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != entities.UserRoleLibrarian {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "librarian role required",
			})
			return
		}
		c.Next()
	}
}

// tryBearerAuth attempts to authenticate using a Bearer token.
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return nil
	}

	claims, err := ParseToken(token, m.service.TokenSecret())
	if err != nil {
		return nil
	}

	// Re-fetch the user so revoked accounts and role changes take effect
	// before the token expires.
	user, err := m.service.GetUserByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) setUserContext(c *gin.Context, userID uint, role entities.UserRole, authType AuthType) {
	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyRole, role)
	c.Set(ContextKeyAuthType, authType)
}

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserRole extracts the authenticated user's role from the Gin context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if role, exists := c.Get(ContextKeyRole); exists {
		if userRole, ok := role.(entities.UserRole); ok {
			return userRole
		}
	}
	return ""
}

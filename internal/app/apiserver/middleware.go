package apiserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/auth"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// sessionCookie is the name of the http-only cookie carrying the JWT.
const sessionCookie = "token"

// principalKey is the gin context key the authenticated user is stored under.
const principalKey = "principal"

// requestIDMiddleware tags every request with an id and threads it through
// the request context so log lines can be correlated.
func requestIDMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header("X-Request-Id", rid)
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// authMiddleware resolves the session token (cookie first, bearer header as
// fallback) into a user and stashes it for handlers. An absent or invalid
// token just leaves the request anonymous; protect decides what that means.
func authMiddleware(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			c.Next()
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(principalKey, &users.User{
			Username: claims.Username,
			Email:    claims.Email,
			Role:     users.Role(claims.Role),
		})
		c.Next()
	}
}

// currentUser returns the authenticated user for the request, if any.
func currentUser(c *gin.Context) (*users.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*users.User)
	return user, ok
}

// protect rejects unauthenticated requests.
func protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		c.Next()
	}
}

// protectAdmin rejects requests whose user is not an admin.
func protectAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

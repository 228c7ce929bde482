package apiserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SalonenTeemu/sandwich-store/internal/domain/users"
	"github.com/SalonenTeemu/sandwich-store/internal/ports"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/auth"
	"github.com/SalonenTeemu/sandwich-store/internal/shared/logger"
)

// UserHandler adapts HTTP requests to the user service and manages the
// session cookie.
type UserHandler struct {
	svc          ports.UserService
	tokens       *auth.TokenIssuer
	cookieSecure bool
	logger       *logger.Logger
}

func NewUserHandler(svc ports.UserService, tokens *auth.TokenIssuer, cookieSecure bool, log *logger.Logger) *UserHandler {
	return &UserHandler{svc: svc, tokens: tokens, cookieSecure: cookieSecure, logger: log}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role" binding:"omitempty,oneof=customer admin"`
}

// Register creates a customer account.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid registration body"})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"message": "Username or email already in use"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "user_register_failed", "Failed to register user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register"})
	default:
		c.JSON(http.StatusCreated, user)
	}
}

// Login verifies credentials and sets the http-only session cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid login body"})
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
			return
		}
		h.logger.Error(c.Request.Context(), "user_login_failed", "Failed to log in user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}

	token, err := h.tokens.Sign(user, time.Now())
	if err != nil {
		h.logger.Error(c.Request.Context(), "token_sign_failed", "Failed to sign session token", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to log in"})
		return
	}

	c.SetCookie(sessionCookie, token, int(auth.TokenTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CheckStatus reports who the token says the caller is. Used by clients to
// restore a session after a page load.
func (h *UserHandler) CheckStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not logged in"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// List returns every account. Admin only (enforced by the route).
func (h *UserHandler) List(c *gin.Context) {
	user, _ := currentUser(c)

	all, err := h.svc.ListUsers(c.Request.Context(), user)
	if err != nil {
		h.logger.Error(c.Request.Context(), "user_list_failed", "Failed to list users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, all)
}

// Get returns one account, owner-or-admin only.
func (h *UserHandler) Get(c *gin.Context) {
	user, _ := currentUser(c)

	target, err := h.svc.GetUser(c.Request.Context(), user, c.Param("username"))
	switch {
	case errors.Is(err, users.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your account"})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "user_get_failed", "Failed to fetch user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user"})
	default:
		c.JSON(http.StatusOK, target)
	}
}

// Update patches an account. A changed username invalidates the session
// cookie, so it is re-issued for self-updates.
func (h *UserHandler) Update(c *gin.Context) {
	user, _ := currentUser(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid update body"})
		return
	}

	target := c.Param("username")
	updated, err := h.svc.UpdateUser(c.Request.Context(), user, target, ports.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case errors.Is(err, users.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your account"})
		return
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	case errors.Is(err, users.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"message": "Username or email already in use"})
		return
	case err != nil:
		h.logger.Error(c.Request.Context(), "user_update_failed", "Failed to update user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}

	if user.Username == target && req.Username != nil {
		if token, err := h.tokens.Sign(updated, time.Now()); err == nil {
			c.SetCookie(sessionCookie, token, int(auth.TokenTTL.Seconds()), "/", "", h.cookieSecure, true)
		}
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes an account, owner-or-admin only. Deleting your own account
// also ends the session.
func (h *UserHandler) Delete(c *gin.Context) {
	user, _ := currentUser(c)

	target := c.Param("username")
	err := h.svc.DeleteUser(c.Request.Context(), user, target)
	switch {
	case errors.Is(err, users.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your account"})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case err != nil:
		h.logger.Error(c.Request.Context(), "user_delete_failed", "Failed to delete user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
	default:
		if user.Username == target {
			c.SetCookie(sessionCookie, "", -1, "/", "", h.cookieSecure, true)
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}

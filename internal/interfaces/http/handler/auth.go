package handler

import (
	"github.com/erp/pymes/internal/application/identity"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	limiter     *middleware.KeyedLimiter
}

// NewAuthHandler creates a new AuthHandler. limiter bounds login attempts
// per client IP and NIT; nil disables the bound.
func NewAuthHandler(authService *identity.AuthService, limiter *middleware.KeyedLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input identity.LoginInput
	if !h.bindJSON(c, &input) {
		return
	}
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()+"|"+input.NIT) {
		middleware.AbortRateLimited(c, h.limiter)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input identity.RefreshInput
	if !h.bindJSON(c, &input) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, pair)
}

// Logout handles POST /auth/logout. The access token that authenticated
// the call is revoked.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	input := identity.LogoutInput{JTI: claims.ID}
	if claims.ExpiresAt != nil {
		input.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(c.Request.Context(), tenantNIT(c), middleware.GetUserID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

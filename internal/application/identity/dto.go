package identity

import (
	"time"

	"github.com/erp/pymes/internal/infrastructure/auth"
)

// LoginInput contains the credentials of a login attempt
type LoginInput struct {
	NIT      string `json:"nit" binding:"required,nit"`
	Username string `json:"username" binding:"required,min=1,max=60"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// UserInfo is the public view of the logged in user
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
	BranchID *int64 `json:"sucursal_id,omitempty"`
}

// TenantInfo names the company the session belongs to
type TenantInfo struct {
	NIT  string `json:"nit"`
	Name string `json:"nombre"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token   *auth.TokenPair `json:"token"`
	User    UserInfo        `json:"usuario"`
	Company TenantInfo      `json:"empresa"`
}

// RefreshInput carries the refresh token to exchange
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	JTI       string
	ExpiresAt time.Time
}

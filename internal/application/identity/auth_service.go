// Package identity authenticates users against their tenant database and
// issues session tokens.
package identity

import (
	"context"
	"errors"
	"time"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/identity"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/infrastructure/auth"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	executor   apptenant.Executor
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	executor apptenant.Executor,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		executor:   executor,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a user against the tenant database of input.NIT.
// A missing user, a wrong password and an inactive user all fail with the
// same tenant.ErrInvalidCredentials. Tokens are issued after the tenant
// connection has been released.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	var (
		user    *identity.User
		company apptenant.Info
	)

	err := s.executor.Run(ctx, input.NIT, func(ctx context.Context, sess apptenant.Session) error {
		log := logger.FromContextOr(ctx, s.logger)
		company = sess.Tenant()

		found, err := sess.Users().FindByUsername(ctx, input.Username)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				identity.BurnPasswordCheck(input.Password)
				log.Info("Login failed", zap.String("username", input.Username), zap.String("reason", "unknown_user"))
				return tenant.ErrInvalidCredentials
			}
			return err
		}

		if !found.VerifyPassword(input.Password) {
			log.Info("Login failed", zap.String("username", input.Username), zap.String("reason", "bad_password"))
			return tenant.ErrInvalidCredentials
		}
		if !found.Active {
			log.Info("Login failed", zap.String("username", input.Username), zap.String("reason", "inactive"))
			return tenant.ErrInvalidCredentials
		}

		if err := sess.Users().TouchLastLogin(ctx, found.ID, s.now()); err != nil {
			log.Warn("Failed to record last login", zap.Int64("user_id", found.ID), zap.Error(err))
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		NIT:      company.NIT,
		Company:  company.Name,
		Role:     user.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("tenant", company.NIT),
		zap.Int64("user_id", user.ID),
	)
	return &LoginResult{
		Token: pair,
		User: UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			BranchID: user.BranchID,
		},
		Company: TenantInfo{NIT: company.NIT, Name: company.Name},
	}, nil
}

// Refresh exchanges a refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*auth.TokenPair, error) {
	pair, claims, err := s.jwtService.RefreshTokenPair(input.RefreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized.Wrap(err)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, shared.ErrUnauthorized.Wrap(auth.ErrTokenBlacklisted)
	}
	// The presented refresh token is single use.
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := input.ExpiresAt.Sub(s.now())
	if err := s.blacklist.Revoke(ctx, input.JTI, ttl); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("User logged out")
	return nil
}

// CurrentUser loads the authenticated user from the tenant database
func (s *AuthService) CurrentUser(ctx context.Context, nit string, userID int64) (*UserInfo, error) {
	var info *UserInfo
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		u, err := sess.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		info = &UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
			Role:     u.Role,
			BranchID: u.BranchID,
		}
		return nil
	})
	return info, err
}

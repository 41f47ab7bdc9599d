package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/infrastructure/auth"
	"github.com/erp/pymes/internal/infrastructure/logger"
	"github.com/erp/pymes/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthRequiredMessage is the one message every 401 from the middleware carries
const AuthRequiredMessage = "Authentication required"

// JWTConfig holds configuration for JWT middleware
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; revoked jti values are rejected when set
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth validates the bearer access token, rejects revoked tokens and
// stores the claims in the gin context. The tenant NIT and user id are
// added to the request logger.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortUnauthorized(c, log, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err)
			return
		}

		if cfg.Blacklist != nil && claims.ID != "" {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Blacklist outages do not lock every user out
				log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, log, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		ctx, _ := logger.WithTenant(c.Request.Context(), claims.TenantID)
		ctx, reqLog := logger.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Set(logger.GinContextKey, reqLog)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	code := shared.ErrUnauthorized.Code
	if errors.Is(err, auth.ErrExpiredToken) {
		code = dto.ErrCodeTokenExpired
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, AuthRequiredMessage, c.GetString(RequestIDKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetTenantNIT returns the NIT of the authenticated tenant, or ""
func GetTenantNIT(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.TenantID
	}
	return ""
}

// GetUserID returns the authenticated user id, or 0
func GetUserID(c *gin.Context) int64 {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// RequireRole lets through only tokens whose role is one of roles. It must
// run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil || !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				shared.ErrForbidden.Code, shared.ErrForbidden.Message, c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}

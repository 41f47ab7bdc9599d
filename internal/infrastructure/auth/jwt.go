package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/erp/pymes/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingTenantID    = errors.New("missing tenant_id in claims")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims carries the authenticated identity. TenantID and NIT hold the same
// value; TenantID is the field the middleware routes on.
type Claims struct {
	jwt.RegisteredClaims
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	TenantID     string    `json:"tenant_id"`
	NIT          string    `json:"nit"`
	Company      string    `json:"empresa,omitempty"`
	Role         string    `json:"rol,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// Identity returns the subject the claims were issued for
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Username: c.Username,
		NIT:      c.TenantID,
		Company:  c.Company,
		Role:     c.Role,
	}
}

// RemainingTTL returns the time until the token expires, never negative
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Identity is the subject a token pair is issued for
type Identity struct {
	UserID   int64
	Username string
	NIT      string
	Company  string
	Role     string
}

// tokenKey is the secret and lifetime of one kind of token
type tokenKey struct {
	kind   TokenType
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 session tokens. Access and refresh
// tokens use separate secrets when refresh_secret is configured.
type JWTService struct {
	access          tokenKey
	refresh         tokenKey
	issuer          string
	maxRefreshCount int
	now             func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:          tokenKey{kind: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:         tokenKey{kind: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:          cfg.Issuer,
		maxRefreshCount: cfg.MaxRefreshCount,
		now:             time.Now,
	}
}

// AccessTokenExpiration returns the access token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.access.ttl
}

// GenerateTokenPair issues a fresh access and refresh token for id
func (s *JWTService) GenerateTokenPair(id Identity) (*TokenPair, error) {
	return s.issuePair(id, 0)
}

// RefreshTokenPair exchanges a valid refresh token for a new pair and
// returns the claims of the presented token. The refresh count travels in
// the token and is capped by max_refresh_count.
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, *Claims, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if s.maxRefreshCount > 0 && claims.RefreshCount >= s.maxRefreshCount {
		return nil, nil, ErrMaxRefreshExceeded
	}

	pair, err := s.issuePair(claims.Identity(), claims.RefreshCount+1)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// ValidateAccessToken verifies an access token and returns its claims
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.access)
}

// ValidateRefreshToken verifies a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refresh)
}

func (s *JWTService) issuePair(id Identity, refreshCount int) (*TokenPair, error) {
	now := s.now()
	access, accessExp, err := s.sign(id, s.access, now, 0)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(id, s.refresh, now, refreshCount)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  accessExp,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) sign(id Identity, key tokenKey, now time.Time, refreshCount int) (string, time.Time, error) {
	exp := now.Add(key.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, s.newClaims(id, key.kind, now, exp, refreshCount))
	signed, err := token.SignedString(key.secret)
	return signed, exp, err
}

func (s *JWTService) newClaims(id Identity, kind TokenType, now, exp time.Time, refreshCount int) *Claims {
	registered := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   strconv.FormatInt(id.UserID, 10),
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	if s.issuer != "" {
		registered.Audience = jwt.ClaimStrings{s.issuer}
	}
	return &Claims{
		RegisteredClaims: registered,
		UserID:           id.UserID,
		Username:         id.Username,
		TenantID:         id.NIT,
		NIT:              id.NIT,
		Company:          id.Company,
		Role:             id.Role,
		TokenType:        kind,
		RefreshCount:     refreshCount,
	}
}

func (s *JWTService) verify(raw string, key tokenKey) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.TokenType != key.kind {
		return nil, ErrInvalidTokenType
	}
	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if claims.UserID == 0 {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

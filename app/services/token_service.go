// Package services provides technical concerns shared by the HTTP layer, such as access tokens
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/taskserial/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenService issues and validates the access tokens that guard write endpoints
type TokenService interface {
	IssueAccessToken(subject string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// TokenClaims represents the claims in an access token
type TokenClaims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenID   string    `json:"jti"`
}

// TokenServiceImpl implements TokenService with HMAC-SHA256 signed tokens
type TokenServiceImpl struct {
	accessTokenTTL time.Duration
	secretKey      []byte
	issuer         string
	audience       string
	parser         *jwt.Parser
}

// NewTokenService creates a new token service
func NewTokenService(accessTokenTTL time.Duration, issuer, audience, secretKey string) (TokenService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	if accessTokenTTL <= 0 {
		accessTokenTTL = utils.AccessTokenTTL
	}

	return &TokenServiceImpl{
		accessTokenTTL: accessTokenTTL,
		secretKey:      []byte(secretKey),
		issuer:         issuer,
		audience:       audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// IssueAccessToken signs a token for subject
func (s *TokenServiceImpl) IssueAccessToken(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("subject is required")
	}

	now := utils.UTCNow()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": s.issuer,
		"aud": s.audience,
		"iat": now.Unix(),
		"exp": now.Add(s.accessTokenTTL).Unix(),
		"jti": uuid.New().String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, issuer, audience and expiry and returns the claims
func (s *TokenServiceImpl) ValidateAccessToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrTokenInvalid
	}
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, ErrTokenInvalid
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrTokenInvalid
	}
	tokenID, _ := claims["jti"].(string)

	return &TokenClaims{
		Subject:   subject,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
		TokenID:   tokenID,
	}, nil
}

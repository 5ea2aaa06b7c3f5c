package services

import (
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/dgrijalva/jwt-go"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// OpaqueTokenLength is the length of emailed single-use tokens.
const OpaqueTokenLength = 21

// Claims is the payload of a session token.
type Claims struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	jwt.StandardClaims
}

// TokenService mints opaque single-use tokens and signs session tokens.
type TokenService struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, ttl, rememberTTL time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:      []byte(secret),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         now,
	}
}

// NewOpaqueToken returns a URL-safe random token of OpaqueTokenLength characters.
func (s *TokenService) NewOpaqueToken() (string, error) {
	token, err := gonanoid.New(OpaqueTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Issue signs a session token for user. Remembered sessions live longer.
func (s *TokenService) Issue(user *models.User, remember bool) (string, time.Time, error) {
	now := s.now()
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and expiry of a session token.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// Expiry is checked against the injected clock, not jwt.TimeFunc.
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, fmt.Errorf("invalid token: expired")
	}
	return claims, nil
}

package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rideshare_go/internal/domain"
)

// Claims is the JWT payload issued at login: the user id and phone.
type Claims struct {
	UserID int64  `json:"userId"`
	Phone  string `json:"phone"`
	jwt.RegisteredClaims
}

// TokenService wraps JWT creation and validation. It is the identity
// verifier for both REST and realtime connections.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}
}

// CreateForUser creates a JWT for the given user using the default TTL.
func (t *TokenService) CreateForUser(userID int64, phone string) (string, error) {
	return t.CreateWithTTL(userID, phone, t.expiresIn)
}

// CreateWithTTL creates a JWT for the given user with an explicit TTL.
func (t *TokenService) CreateWithTTL(userID int64, phone string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID,
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its claims.
func (t *TokenService) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// Verify validates a bearer credential and returns the user id it names.
// Every failure wraps domain.ErrAuthentication.
func (t *TokenService) Verify(tokenStr string) (int64, error) {
	if tokenStr == "" {
		return 0, fmt.Errorf("%w: missing bearer token", domain.ErrAuthentication)
	}
	claims, err := t.Parse(tokenStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: invalid token subject", domain.ErrAuthentication)
	}
	return claims.UserID, nil
}

package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the closed set of token classes the service mints. Each
// class is signed with its own secret, so a token of one class can never
// satisfy a verification of another even if the payloads were compatible.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenEmail   TokenType = "email"
)

var (
	// ErrTokenExpired means the signature verified but the token is past
	// its expiry. Clients holding a refresh token should refresh.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed means the string could not be decoded as a token.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenInvalid covers bad signatures, wrong-class tokens and
	// unknown token types. Clients should re-authenticate.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the signed payload. Type travels inside the signature so a
// wrong-class token fails the explicit check even if the secrets were
// ever misconfigured to the same value.
type Claims struct {
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

type tokenClass struct {
	secret []byte
	ttl    time.Duration
}

// TokenManager mints and verifies access, refresh and email-verification
// tokens. It is stateless beyond its secrets and safe for concurrent use.
type TokenManager struct {
	classes map[TokenType]tokenClass
}

func NewTokenManager(accessSecret, refreshSecret, emailSecret string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenManager {
	return &TokenManager{
		classes: map[TokenType]tokenClass{
			TokenAccess:  {secret: []byte(accessSecret), ttl: accessTTL},
			TokenRefresh: {secret: []byte(refreshSecret), ttl: refreshTTL},
			TokenEmail:   {secret: []byte(emailSecret), ttl: emailTTL},
		},
	}
}

// Generate mints a token of the given class for the subject email.
// Expiry is absolute: issued-at plus the class lifetime, not sliding.
func (m *TokenManager) Generate(typ TokenType, email string) (string, time.Time, error) {
	class, ok := m.classes[typ]
	if !ok {
		return "", time.Time{}, ErrTokenInvalid
	}
	now := time.Now()
	exp := now.Add(class.ttl)
	claims := &Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(class.secret)
	return s, exp, err
}

func (m *TokenManager) GenerateAccessToken(email string) (string, time.Time, error) {
	return m.Generate(TokenAccess, email)
}

func (m *TokenManager) GenerateRefreshToken(email string) (string, time.Time, error) {
	return m.Generate(TokenRefresh, email)
}

func (m *TokenManager) GenerateEmailToken(email string) (string, time.Time, error) {
	return m.Generate(TokenEmail, email)
}

// Parse verifies tokenStr under the secret bound to typ and returns the
// decoded claims. Failures are classified so callers can distinguish
// "refresh now" from "log in again".
func (m *TokenManager) Parse(tokenStr string, typ TokenType) (*Claims, error) {
	class, ok := m.classes[typ]
	if !ok {
		return nil, ErrTokenInvalid
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return class.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !tkn.Valid || claims.TokenType != typ {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

package security

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token is malformed or invalid.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims holds JWT claims for the dashboard session token. The SPA
// treats the token as opaque; the server reads the phone number back out of it.
type SessionClaims struct {
	jwt.RegisteredClaims
	PhoneNumber string `json:"phone_number"`
}

// TokenProvider issues and validates RS256 session JWTs.
type TokenProvider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given RSA key pair.
// issuer and audience are set on claims and validated on every request.
func NewTokenProvider(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer, audience string, accessTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
	}
}

// Issue issues a session JWT for the given user and phone number.
// Returns the token string and its expiration time.
func (p *TokenProvider) Issue(userID, phoneNumber string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		PhoneNumber: phoneNumber,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	return token, expiresAt, err
}

// Validate parses and validates the session token (signature, exp, iss, aud).
// Returns userID and phoneNumber, or ErrInvalidToken.
func (p *TokenProvider) Validate(tokenString string) (userID, phoneNumber string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		return p.publicKey, nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", "", ErrInvalidToken
	}
	audOK := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOK = true
			break
		}
	}
	if !audOK {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.PhoneNumber, nil
}

package services

import (
	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is what a verified bearer credential establishes: identity
// only. Tenant and role come from the profile lookup.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
}

// TokenVerifier verifies a bearer credential. Abstracted so the middleware
// can be exercised without minting real tokens.
type TokenVerifier interface {
	Verify(token string) (TokenClaims, error)
}

// identityClaims is the JWT payload shared by issuance and verification
type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens issued by AuthService
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (TokenClaims, error) {
	var claims identityClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Newf(apperr.CodeUnauthenticated, "unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return TokenClaims{}, apperr.New(apperr.CodeUnauthenticated, "invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return TokenClaims{}, apperr.New(apperr.CodeUnauthenticated, "invalid token subject")
	}
	return TokenClaims{UserID: userID, Email: claims.Email}, nil
}

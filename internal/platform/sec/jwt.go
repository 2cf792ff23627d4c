// Copyright (c) 2026 TaskForge. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, random
// token generation) from the domain logic. It acts as an Infrastructure
// service injected into the Application layer via small interfaces
// (e.g. the auth package's TokenProvider).
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and Role directly inside the JWT,
// the authentication middleware can reconstruct the active user context
// WITHOUT querying the database on every single API request. This provides
// massive read-scalability.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   string `json:"rol"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// The signing key is a shared secret: the same key signs and verifies, which
// is sufficient for a single-service deployment where no third party needs to
// validate tokens independently.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenService creates a new TokenService.
//
// It fails fast at construction time if the secret, issuer, or audience is
// absent, so a misconfigured deployment never signs a single token.
func NewTokenService(secret, issuer, audience string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: jwt secret must not be empty")
	}
	if issuer == "" {
		return nil, errors.New("sec: jwt issuer must not be empty")
	}
	if audience == "" {
		return nil, errors.New("sec: jwt audience must not be empty")
	}

	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// GenerateAccessToken creates a new signed JWT access token for a user.
//
// # Parameters
//   - userID: The ID of the account, stored as the 'sub' claim.
//   - email: The account's email address.
//   - role: The system role of the account.
//   - timeToLive: The duration before the token expires.
func (service *TokenService) GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// Issuer, audience, and expiry are all enforced. There is deliberately no
// clock-skew leeway: a token one second past its expiry is rejected.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return service.secret, nil
		},
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}

package token

import (
	"fmt"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/constants"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by access and refresh tokens. It is the sole
// source of "acting user" for every authorization check downstream.
type Claims struct {
	UserID uint
	Email  string
	Role   string
	Status string
}

// Service issues and verifies the signed access/refresh token pair.
type Service struct {
	accessSecret   []byte
	refreshSecret  []byte
	accessExpires  time.Duration
	refreshExpires time.Duration
}

func NewService(accessSecret, refreshSecret string, accessExpires, refreshExpires time.Duration) *Service {
	return &Service{
		accessSecret:   []byte(accessSecret),
		refreshSecret:  []byte(refreshSecret),
		accessExpires:  accessExpires,
		refreshExpires: refreshExpires,
	}
}

// GenerateAccessToken creates a signed short-lived access token.
func (s *Service) GenerateAccessToken(claims Claims) (string, error) {
	return s.generate(claims, s.accessSecret, s.accessExpires)
}

// GenerateRefreshToken creates a signed longer-lived refresh token.
func (s *Service) GenerateRefreshToken(claims Claims) (string, error) {
	return s.generate(claims, s.refreshSecret, s.refreshExpires)
}

func (s *Service) generate(claims Claims, secret []byte, expiration time.Duration) (string, error) {
	mapClaims := jwt.MapClaims{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
		"status":  claims.Status,
		"exp":     time.Now().Add(expiration).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// VerifyAccessToken validates signature and expiry of an access token.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefreshToken validates signature and expiry of a refresh token.
func (s *Service) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *Service) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, "Invalid or expired token", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid token claims")
	}

	claims := &Claims{}
	if id, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = uint(id)
	}
	if claims.UserID == 0 {
		return nil, apperrors.Unauthorized("Token missing subject")
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if status, ok := mapClaims["status"].(string); ok && status != "" {
		claims.Status = status
	} else {
		// Tokens minted before the status claim existed default to ACTIVE.
		claims.Status = constants.StatusActive
	}

	return claims, nil
}

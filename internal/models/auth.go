package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a member.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and member info.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	Member      MemberInfo `json:"member"`
	IssuedAt    time.Time  `json:"issued_at"`
}

// MemberInfo describes the authenticated member in responses.
type MemberInfo struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     MemberRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	MemberID string     `json:"member_id"`
	Role     MemberRole `json:"role"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	jwt.RegisteredClaims
}

// DashboardSummary is the landing-page counter block.
type DashboardSummary struct {
	EventCount       int `json:"event_count"`
	EnrollmentCount  int `json:"enrollment_count"`
	CertificateCount int `json:"certificate_count"`
}

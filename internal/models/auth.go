package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the rotated tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating the caller's own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}

// RefreshToken represents a persisted refresh token session.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"token"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
}

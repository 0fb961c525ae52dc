package models

import "github.com/google/uuid"

const AuthMethodMagicLinkEmail = "magic_link_email"

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID   uuid.UUID
	PublicID string
}

// User represents user information
// @Description User structure
type User struct {
	ID    string `json:"id" example:"0190f1c2a8b47c3e9d1f2a3b4c5d6e7f"` // Public user ID
	Email string `json:"email" example:"user@example.com"`              // Most recently verified email
}

// MagicLinkToken is the part of a stored sign-in token needed to redeem it.
type MagicLinkToken struct {
	ID    uuid.UUID `db:"id"`
	Email string    `db:"email"`
}

// MagicLinkRequest represents the sign-in link request payload
// @Description Magic link request structure
type MagicLinkRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// MagicLinkRequestResponse never reveals whether the email is registered.
// DebugToken is only populated outside production.
type MagicLinkRequestResponse struct {
	Message    string  `json:"message"`
	DebugToken *string `json:"debug_token,omitempty"`
}

type MagicLinkVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse carries the raw session token. It is returned exactly once.
type SessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

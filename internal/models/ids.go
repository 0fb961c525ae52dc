package models

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// PublicIDLength is the length of every identifier exposed over the API.
const PublicIDLength = 32

// NewID returns a time-ordered internal row identifier.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewPublicID returns an opaque identifier unrelated to the internal row id.
func NewPublicID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/envelopezero/backend/internal/models"
)

const bearerPrefix = "Bearer "

// SessionLookup resolves a session token hash to the owning user.
// It returns (nil, nil) when no live session matches.
type SessionLookup interface {
	LookupUserByTokenHash(ctx context.Context, tokenHash string) (*models.Identity, error)
}

type PgSessionLookup struct {
	db *sql.DB
}

func NewPgSessionLookup(db *sql.DB) *PgSessionLookup {
	return &PgSessionLookup{db: db}
}

func (l *PgSessionLookup) LookupUserByTokenHash(ctx context.Context, tokenHash string) (*models.Identity, error) {
	var identity models.Identity
	err := l.db.QueryRowContext(ctx, `
		SELECT s.user_id, u.public_id
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.revoked_at IS NULL AND s.expires_at > NOW() AND u.deleted_at IS NULL`,
		tokenHash,
	).Scan(&identity.UserID, &identity.PublicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return &identity, nil
}

// HashToken returns the hex SHA-256 digest stored in place of a raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RandomToken returns n random bytes encoded as unpadded URL-safe base64.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrUnauthorized
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}

// Authenticate resolves an Authorization header to the caller's identity.
func Authenticate(ctx context.Context, lookup SessionLookup, header string) (*models.Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	identity, err := lookup.LookupUserByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrUnauthorized
	}
	return identity, nil
}

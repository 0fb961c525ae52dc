package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/envelopezero/backend/internal/audit"
	"github.com/envelopezero/backend/internal/database"
	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/notify"
)

const (
	magicLinkTokenBytes = 32
	sessionTokenBytes   = 48

	MagicLinkMessage = "If this email is registered, a magic link will be sent."
	magicLinkSubject = "Your EnvelopeZero sign-in link"
)

type AuthSettings struct {
	AppOrigin    string
	MagicLinkTTL time.Duration
	SessionTTL   time.Duration
	// ExposeDebugToken returns the raw magic-link token in the request response.
	// Never set in production.
	ExposeDebugToken bool
}

type AuthService struct {
	db       *sql.DB
	notifier notify.Notifier
	limiter  *MagicLinkLimiter
	audit    *audit.AuditLogger
	settings AuthSettings
	now      func() time.Time
}

func NewAuthService(db *sql.DB, notifier notify.Notifier, limiter *MagicLinkLimiter, auditLogger *audit.AuditLogger, settings AuthSettings) *AuthService {
	return &AuthService{
		db:       db,
		notifier: notifier,
		limiter:  limiter,
		audit:    auditLogger,
		settings: settings,
		now:      time.Now,
	}
}

// NormalizeEmail trims and lowercases an address, rejecting anything without an @.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || !strings.Contains(normalized, "@") {
		return "", fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	return normalized, nil
}

// RequestMagicLink issues a single-use sign-in token for email. The response is
// the same whether or not the address belongs to an existing user.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) (*models.MagicLinkRequestResponse, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Allow(ctx, email); err != nil {
		s.audit.LogAuth("MAGIC_LINK_REQUEST", "", "RATE_LIMITED")
		return nil, err
	}

	token, err := RandomToken(magicLinkTokenBytes)
	if err != nil {
		return nil, err
	}

	tokenID := models.NewID()
	outboxID := models.NewPublicID()

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO magic_link_tokens (id, email, token_hash, expires_at)
			VALUES ($1, $2, $3, NOW() + make_interval(secs => $4))`,
			tokenID, email, HashToken(token), intervalSeconds(s.settings.MagicLinkTTL),
		); err != nil {
			return fmt.Errorf("insert magic link token: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO email_outbox (id, public_id, to_email, subject, kind, magic_link_token_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			models.NewID(), outboxID, email, magicLinkSubject, notify.KindMagicLink, tokenID,
		); err != nil {
			return fmt.Errorf("insert email outbox: %w", err)
		}
		return nil
	})
	if err != nil {
		s.audit.LogError("MAGIC_LINK_REQUEST", "", err)
		return nil, err
	}

	msg := notify.EmailMessage{
		OutboxID:  outboxID,
		Kind:      notify.KindMagicLink,
		To:        email,
		Subject:   magicLinkSubject,
		Body:      s.magicLinkBody(token),
		Timestamp: s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		// the outbox row stays unsent; the user can simply request another link
		log.Printf("[AUTH] Magic link delivery failed for outbox %s: %v", outboxID, err)
	}

	s.audit.LogAuth("MAGIC_LINK_REQUEST", "", "SUCCESS")

	resp := &models.MagicLinkRequestResponse{Message: MagicLinkMessage}
	if s.settings.ExposeDebugToken {
		resp.DebugToken = &token
	}
	return resp, nil
}

// intervalSeconds converts a TTL for make_interval so expiry is computed on the
// database clock, the same clock that later compares it with NOW().
func intervalSeconds(d time.Duration) float64 {
	return d.Seconds()
}

func (s *AuthService) magicLinkBody(token string) string {
	link := fmt.Sprintf("%s/?token=%s", strings.TrimRight(s.settings.AppOrigin, "/"), token)
	return fmt.Sprintf("Click to sign in to EnvelopeZero:\r\n\r\n%s\r\n\r\nThis link expires in %s and can only be used once.\r\n",
		link, s.settings.MagicLinkTTL)
}

// VerifyMagicLink consumes a magic-link token and opens a session. The first
// verification of an unknown email creates the user with a default budget.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (*models.SessionResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}

	sessionToken, err := RandomToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}

	var identity *models.Identity
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var link models.MagicLinkToken
		err := tx.QueryRowContext(ctx, `
			SELECT id, email
			FROM magic_link_tokens
			WHERE token_hash = $1 AND consumed_at IS NULL AND expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE`, HashToken(token),
		).Scan(&link.ID, &link.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnauthorized
		}
		if err != nil {
			return fmt.Errorf("select magic link token: %w", err)
		}

		identity, err = findUserByEmail(ctx, tx, link.Email)
		if err != nil {
			return err
		}
		if identity == nil {
			if identity, err = createUser(ctx, tx, link.Email); err != nil {
				return err
			}
			if _, _, err := createDefaultBudget(ctx, tx, identity.UserID, models.DefaultBudgetName); err != nil {
				return err
			}
			log.Printf("[AUTH] Created user %s", identity.PublicID)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE magic_link_tokens SET consumed_at = NOW() WHERE id = $1`, link.ID,
		); err != nil {
			return fmt.Errorf("consume magic link token: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, user_id, token_hash, expires_at)
			VALUES ($1, $2, $3, NOW() + make_interval(secs => $4))`,
			models.NewID(), identity.UserID, HashToken(sessionToken), intervalSeconds(s.settings.SessionTTL),
		); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.audit.LogAuth("MAGIC_LINK_VERIFY", "", "REJECTED")
		} else {
			s.audit.LogError("MAGIC_LINK_VERIFY", "", err)
		}
		return nil, err
	}

	s.audit.LogAuth("MAGIC_LINK_VERIFY", identity.PublicID, "SUCCESS")
	return &models.SessionResponse{Token: sessionToken, UserID: identity.PublicID}, nil
}

// Me returns the caller's public id and most recently verified email.
func (s *AuthService) Me(ctx context.Context, identity models.Identity) (*models.User, error) {
	user := models.User{ID: identity.PublicID}
	err := s.db.QueryRowContext(ctx, `
		SELECT email
		FROM user_emails
		WHERE user_id = $1
		ORDER BY verified_at DESC NULLS LAST, created_at DESC
		LIMIT 1`, identity.UserID,
	).Scan(&user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("select user email: %w", err)
	}
	return &user, nil
}

// Logout revokes the session behind token. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, identity models.Identity, token string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET revoked_at = NOW()
		WHERE token_hash = $1 AND user_id = $2 AND revoked_at IS NULL`,
		HashToken(token), identity.UserID,
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.audit.LogAuth("LOGOUT", identity.PublicID, "SUCCESS")
	return nil
}

package repository

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"colecta_engine/internal/config/connections/postgres"
)

// PersonalAccessToken is an API token issued by the host application. The
// engine only reads these; issuing and revoking belong to the auth surface.
type PersonalAccessToken struct {
	ID        int64
	TokenHash string
	UserID    int64
	Abilities string
	ExpiresAt *time.Time
}

type PersonalAccessTokenRepository struct {
	pg *postgres.Postgres
}

func NewPersonalAccessTokenRepository(pg *postgres.Postgres) *PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{pg: pg}
}

func (r *PersonalAccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*PersonalAccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	sum := sha256.Sum256([]byte(plainToken))
	hashStr := fmt.Sprintf("%x", sum)

	query := `
        SELECT id, token_hash, user_id, abilities, expires_at
        FROM personal_access_tokens
        WHERE token_hash = $1
          AND (expires_at IS NULL OR expires_at > $2)
        ORDER BY created_at DESC
        LIMIT 1
    `

	var pat PersonalAccessToken
	err := r.pg.Pool.QueryRow(ctx, query, hashStr, time.Now()).Scan(
		&pat.ID,
		&pat.TokenHash,
		&pat.UserID,
		&pat.Abilities,
		&pat.ExpiresAt,
	)
	if err != nil {
		log.Printf("[TOKEN] lookup error: %v", err)
		return nil, errors.New("token not found")
	}

	return &pat, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"go-shop-api/internal/database"
	"go-shop-api/internal/model"
)

// TokenRepository is the PostgreSQL refresh whitelist store.
type TokenRepository struct {
	db database.Querier
}

func NewTokenRepository(db database.Querier) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, rec model.RefreshRecord) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token_digest, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (token_digest) DO NOTHING`,
		rec.UserID, rec.Digest, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return model.ErrWhitelistWrite
	}
	return nil
}

func (r *TokenRepository) FindByDigest(ctx context.Context, digest string) (model.RefreshRecord, error) {
	rec := model.RefreshRecord{Digest: digest}
	err := r.db.QueryRow(ctx,
		`SELECT user_id, expires_at FROM refresh_tokens
		 WHERE token_digest = $1 AND expires_at > now()`, digest).
		Scan(&rec.UserID, &rec.ExpiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.RefreshRecord{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.RefreshRecord{}, fmt.Errorf("find refresh token: %w", err)
	}
	return rec, nil
}

func (r *TokenRepository) Rotate(ctx context.Context, oldDigest string, newDigest string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens
		 SET token_digest = $2, expires_at = $3, created_at = now()
		 WHERE token_digest = $1 AND expires_at > now()`,
		oldDigest, newDigest, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return model.ErrTokenNotRotated
	}
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

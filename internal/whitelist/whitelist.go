package whitelist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-shop-api/internal/model"
)

// Store persists refresh token digests. Implementations must make Rotate a
// single conditional write keyed by the old digest.
type Store interface {
	Insert(ctx context.Context, rec model.RefreshRecord) error
	FindByDigest(ctx context.Context, digest string) (model.RefreshRecord, error)
	Rotate(ctx context.Context, oldDigest string, newDigest string, expiresAt time.Time) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Digest returns the lowercase hex SHA-256 of a refresh token. Only digests
// ever reach a Store.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type Whitelist struct {
	store   Store
	ttl     time.Duration
	now     func() time.Time
	onPurge func(removed int64)
}

type Option func(*Whitelist)

// WithPurgeHook is called after every successful cleanup pass.
func WithPurgeHook(fn func(removed int64)) Option {
	return func(w *Whitelist) {
		w.onPurge = fn
	}
}

func New(store Store, ttl time.Duration, opts ...Option) *Whitelist {
	w := &Whitelist{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Whitelist) Insert(ctx context.Context, userID string, token string) error {
	if userID == "" || token == "" {
		return errors.New("whitelist insert: user id and token are required")
	}

	rec := model.RefreshRecord{
		UserID:    userID,
		Digest:    Digest(token),
		ExpiresAt: w.now().UTC().Add(w.ttl),
	}
	if err := w.store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("whitelist insert: %w", err)
	}
	return nil
}

// Lookup returns the live record for token or model.ErrTokenNotFound.
func (w *Whitelist) Lookup(ctx context.Context, token string) (model.RefreshRecord, error) {
	if token == "" {
		return model.RefreshRecord{}, model.ErrTokenNotFound
	}

	rec, err := w.store.FindByDigest(ctx, Digest(token))
	if err != nil {
		return model.RefreshRecord{}, err
	}
	if !rec.ExpiresAt.IsZero() && !rec.ExpiresAt.After(w.now()) {
		return model.RefreshRecord{}, model.ErrTokenNotFound
	}
	return rec, nil
}

// Rotate replaces the record of oldToken with newToken in one step. It fails
// with model.ErrTokenNotRotated when oldToken is no longer whitelisted.
func (w *Whitelist) Rotate(ctx context.Context, oldToken string, newToken string) error {
	if oldToken == "" || newToken == "" {
		return model.ErrTokenNotRotated
	}

	expiresAt := w.now().UTC().Add(w.ttl)
	if err := w.store.Rotate(ctx, Digest(oldToken), Digest(newToken), expiresAt); err != nil {
		return fmt.Errorf("whitelist rotate: %w", err)
	}
	return nil
}

func (w *Whitelist) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := w.store.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("whitelist purge: %w", err)
	}
	return n, nil
}

// StartCleanup purges expired records once immediately and then on every
// tick until ctx is cancelled.
func (w *Whitelist) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		w.purgeAndLog(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.purgeAndLog(ctx)
			}
		}
	}()
}

func (w *Whitelist) purgeAndLog(ctx context.Context) {
	n, err := w.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("refresh whitelist cleanup failed", "error", err)
		}
		return
	}
	if w.onPurge != nil {
		w.onPurge(n)
	}
	if n > 0 {
		slog.Info("refresh whitelist cleanup", "removed", n)
	}
}

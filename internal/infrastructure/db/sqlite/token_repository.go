package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/udla/user-directory/internal/core/domain"
)

// TokenRepository implements ports.TokenRepository on SQLite.
type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetOrCreate(ctx context.Context, userID, candidate string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO auth_tokens (token, user_id) VALUES (?, ?)`, candidate, userID,
	); err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}

	var token string
	if err := r.db.GetContext(ctx, &token, `SELECT token FROM auth_tokens WHERE user_id = ?`, userID); err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) FindUserID(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT user_id FROM auth_tokens WHERE token = ?`, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("find token: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

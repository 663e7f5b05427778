package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udla/user-directory/internal/core/domain"
)

// TokenRepository implements ports.TokenRepository on PostgreSQL.
type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate relies on the unique user_id column so concurrent first
// logins converge on a single stored token.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID, candidate string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := parseID(userID)
	if err != nil {
		return "", domain.ErrUserNotFound
	}

	if _, err := r.db.Exec(ctx,
		`INSERT INTO auth_tokens (token, user_id) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		candidate, id,
	); err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}

	var token string
	if err := r.db.QueryRow(ctx, `SELECT token FROM auth_tokens WHERE user_id = $1`, id).Scan(&token); err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) FindUserID(ctx context.Context, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRow(ctx, `SELECT user_id FROM auth_tokens WHERE token = $1`, token).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrInvalidToken
		}
		return "", fmt.Errorf("find token: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

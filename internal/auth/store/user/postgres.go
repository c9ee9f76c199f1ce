package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"giftlist/internal/auth"
	"giftlist/pkg/platform/sentinel"
)

// Postgres persists users in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.find(ctx, `SELECT id, username, email, password_hash FROM users WHERE lower(username) = lower($1)`, username)
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	return s.find(ctx, `SELECT id, username, email, password_hash FROM users WHERE id = $1`, id)
}

func (s *Postgres) find(ctx context.Context, query string, arg any) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Postgres) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	saved := *user
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, user.Username, user.Email, user.PasswordHash).Scan(&saved.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &saved, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/shortpost/shortpost/internal/models"
)

const uniqueViolation = "23505"

// SQLStore implements Store on top of Postgres.
type SQLStore struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	u := models.User{Email: email, PasswordHash: passwordHash}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, email, passwordHash).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}
	return &u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User

	err := s.db.GetContext(ctx, &u, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email=$1
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return &u, nil
}

func (s *SQLStore) CreatePost(ctx context.Context, userID int64, text string) (*models.Post, error) {
	p := models.Post{UserID: userID, Text: text}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO posts (user_id, text)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, userID, text).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("store: create post: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post

	err := s.db.GetContext(ctx, &p, `SELECT id, user_id, text, created_at FROM posts WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get post: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	posts := []models.Post{}

	err := s.db.SelectContext(ctx, &posts, `
		SELECT id, user_id, text, created_at
		FROM posts
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
	`, userID)

	if err != nil {
		return nil, fmt.Errorf("store: list posts: %w", err)
	}
	return posts, nil
}

func (s *SQLStore) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*SQLStore)(nil)

package store

import (
	"context"
	"errors"

	"github.com/shortpost/shortpost/internal/models"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)

// Store defines persistence operations for users and posts.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreatePost(ctx context.Context, userID int64, text string) (*models.Post, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	ListPostsByUser(ctx context.Context, userID int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

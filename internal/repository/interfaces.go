package repository

import (
	"context"

	"github.com/ewright/todo-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error)
	// UpdateFields applies the given columns to the todo matching both id and
	// owner in a single statement; the returned count is zero when no row
	// matched.
	UpdateFields(ctx context.Context, id, userID uuid.UUID, fields map[string]interface{}) (int64, error)
	Toggle(ctx context.Context, id, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

type Repositories struct {
	User UserRepository
	Todo TodoRepository
}

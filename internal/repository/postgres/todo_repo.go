package postgres

import (
	"context"

	"github.com/ewright/todo-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *todoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// GetForUser looks a todo up by id and owner in one predicate, so a todo
// belonging to another user is indistinguishable from a missing one.
func (r *todoRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).First(&todo, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepository) UpdateFields(ctx context.Context, id, userID uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *todoRepository) Toggle(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("completed", gorm.Expr("NOT completed"))
	return res.RowsAffected, res.Error
}

func (r *todoRepository) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&domain.Todo{}, "id = ? AND user_id = ?", id, userID)
	return res.RowsAffected, res.Error
}

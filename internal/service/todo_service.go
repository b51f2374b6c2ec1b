package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ewright/todo-backend/internal/domain"
	"github.com/ewright/todo-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TodoService struct {
	todoRepo repository.TodoRepository
}

func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

type CreateTodoInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// UpdateTodoInput carries a partial update: nil fields are left unchanged.
// The todo's id and owner are never updatable.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Completed   *bool
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	return s.todoRepo.ListByUser(ctx, userID)
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, input CreateTodoInput) (*domain.Todo, error) {
	// The UI trims too, but the core cannot assume that of its callers.
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	now := time.Now()
	todo := &domain.Todo{
		ID:          uuid.New(),
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Completed:   false,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, userID, id uuid.UUID, input UpdateTodoInput) (*domain.Todo, error) {
	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.ErrTitleRequired
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}
	if input.Completed != nil {
		fields["completed"] = *input.Completed
	}

	rows, err := s.todoRepo.UpdateFields(ctx, id, userID, fields)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrTodoNotFound
	}

	return s.getAfterMutation(ctx, id, userID)
}

func (s *TodoService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	rows, err := s.todoRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (s *TodoService) Toggle(ctx context.Context, userID, id uuid.UUID) (*domain.Todo, error) {
	rows, err := s.todoRepo.Toggle(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrTodoNotFound
	}

	return s.getAfterMutation(ctx, id, userID)
}

func (s *TodoService) getAfterMutation(ctx context.Context, id, userID uuid.UUID) (*domain.Todo, error) {
	todo, err := s.todoRepo.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	return todo, nil
}

package service

import (
	"github.com/ewright/todo-backend/internal/config"
	"github.com/ewright/todo-backend/internal/repository"
	"github.com/ewright/todo-backend/internal/repository/redisstore"
)

type Services struct {
	Auth *AuthService
	Todo *TodoService
}

func NewServices(repos *repository.Repositories, sessions *redisstore.SessionStore, pending *redisstore.VerificationStore, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, sessions, pending, cfg),
		Todo: NewTodoService(repos.Todo),
	}
}

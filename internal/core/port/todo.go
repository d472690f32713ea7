package port

import (
	"context"

	"kubetodo/internal/core/domain"
)

type TodoRepository interface {
	GetAll(ctx context.Context) ([]domain.Todo, error)
	GetByUUID(ctx context.Context, uid string) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error)
	DeleteByUUID(ctx context.Context, uid string) error
}

type TodoService interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, text string) (domain.Todo, error)
	SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error)
	Delete(ctx context.Context, uid string) error
}

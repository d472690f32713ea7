package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
	"kubetodo/internal/core/telemetry"
)

type TodoService struct {
	repo  port.TodoRepository
	probe port.Telemetry
}

func NewTodoService(repo port.TodoRepository, probe port.Telemetry) *TodoService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &TodoService{repo: repo, probe: probe}
}

// List returns every live todo, newest first. Ordering is the
// repository's contract (created_at DESC, id DESC).
func (ts *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "List", nil)
	defer span.End()

	todos, err := ts.repo.GetAll(ctx)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})
	span.SetStatus("ok", "")

	return todos, nil
}

// Create assigns the identifier and timestamps here, never in the caller.
// A todo is always born with Completed=false.
func (ts *TodoService) Create(ctx context.Context, text string) (domain.Todo, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "Create", nil)
	defer span.End()

	if strings.TrimSpace(text) == "" {
		span.SetStatus("error", domain.ErrValidation.Error())
		return domain.Todo{}, domain.ErrValidation
	}

	now := time.Now()

	newTodo := domain.Todo{
		UUID:      uuid.New(),
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	todo, err := ts.repo.Create(ctx, newTodo)

	if err != nil {
		slog.Error("Repository create failed", "error", err, "text", newTodo.Text)
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return domain.Todo{}, err
	}

	span.SetAttributes(map[string]interface{}{"todo.uuid": todo.UUID.String()})
	span.SetStatus("ok", "")

	return todo, nil
}

// SetCompleted mutates exactly the completed flag of one todo. Text and
// CreatedAt are never touched.
func (ts *TodoService) SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error) {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "SetCompleted", map[string]interface{}{
		"todo.uuid":      uid,
		"todo.completed": completed,
	})
	defer span.End()

	if _, err := uuid.Parse(uid); err != nil {
		span.SetStatus("error", err.Error())
		return domain.Todo{}, domain.ErrNotFound
	}

	todo, err := ts.repo.SetCompleted(ctx, uid, completed)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return domain.Todo{}, err
	}

	span.SetStatus("ok", "")

	return todo, nil
}

// Delete removes at most one todo. A uid that does not resolve is not an
// error: delete-of-nonexistent and delete-of-existing are indistinguishable
// to the caller.
func (ts *TodoService) Delete(ctx context.Context, uid string) error {
	ctx, span := ts.probe.StartServiceSpan(ctx, "todo", "Delete", map[string]interface{}{
		"todo.uuid": uid,
	})
	defer span.End()

	err := ts.repo.DeleteByUUID(ctx, uid)

	if err != nil && err != domain.ErrNotFound {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return err
	}

	span.SetStatus("ok", "")

	return nil
}

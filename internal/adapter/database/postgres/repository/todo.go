package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"kubetodo/internal/adapter/database/postgres"
	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
	"kubetodo/pkg/tracing"
)

type TodoRepository struct {
	db *postgres.DB
}

func NewTodoRepository(db *postgres.DB) port.TodoRepository {
	return &TodoRepository{db: db}
}

func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.GetAll", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
	})

	defer span.End()

	query := "SELECT id, uuid, text, completed, created_at, updated_at FROM todos WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC"

	rows, err := tr.db.Query(ctx, query)

	if err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Error fetching todos", "error", err)
		return nil, err
	}

	defer rows.Close()

	data := []domain.Todo{}

	for rows.Next() {
		var todo domain.Todo

		err = rows.Scan(&todo.ID, &todo.UUID, &todo.Text, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

		if err != nil {
			return nil, err
		}

		data = append(data, todo)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(data)))

	return data, rows.Err()
}

func (tr *TodoRepository) GetByUUID(ctx context.Context, uid string) (domain.Todo, error) {
	query, args, err := tr.db.QueryBuilder.Select("id", "uuid", "text", "completed", "created_at", "updated_at").
		From("todos").
		Where(sq.Eq{"uuid": uid}).
		Where(sq.Eq{"deleted_at": nil}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	var todo domain.Todo

	row := tr.db.QueryRow(ctx, query, args...)
	err = row.Scan(&todo.ID, &todo.UUID, &todo.Text, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Create", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("todo.uuid", todo.UUID.String()),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("uuid", "text", "completed", "created_at", "updated_at").
		Values(todo.UUID, todo.Text, todo.Completed, todo.CreatedAt, todo.UpdatedAt).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, err
	}

	if _, err := tr.db.Exec(ctx, query, args...); err != nil {
		tracing.AddSpanError(span, err)
		slog.Error("Insert failed", "error", err, "uuid", todo.UUID.String())
		return domain.Todo{}, err
	}

	tracing.AddSpanEvent(span, "todo.created", []attribute.KeyValue{
		attribute.String("todo.uuid", todo.UUID.String()),
	})

	return tr.GetByUUID(ctx, todo.UUID.String())
}

func (tr *TodoRepository) SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.SetCompleted", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("todo.uuid", uid),
		attribute.Bool("todo.completed", completed),
	})

	defer span.End()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("completed", completed).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"uuid": uid}).
		Where(sq.Eq{"deleted_at": nil}).
		ToSql()

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, err
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		return domain.Todo{}, err
	}

	if tag.RowsAffected() == 0 {
		return domain.Todo{}, domain.ErrNotFound
	}

	return tr.GetByUUID(ctx, uid)
}

func (tr *TodoRepository) DeleteByUUID(ctx context.Context, uid string) error {
	tag, err := tr.db.Exec(ctx, "UPDATE todos SET deleted_at = $1 WHERE uuid = $2 AND deleted_at IS NULL", time.Now(), uid)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

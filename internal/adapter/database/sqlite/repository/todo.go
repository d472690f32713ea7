package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"kubetodo/internal/adapter/database/sqlite"
	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
	tel "kubetodo/internal/core/telemetry"
)

type TodoRepository struct {
	db        *sqlite.DB
	scanner   *sqlite.Scanner
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		scanner:   sqlite.NewScanner(),
		telemetry: telemetry,
	}
}

// GetAll returns every live todo ordered newest first. The id tiebreak
// keeps the order stable when two rows share a created_at.
func (tr *TodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetAll", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
	})
	defer span.End()

	startTime := time.Now()

	query := tr.db.QueryBuilder.Select("*").
		From("todos").
		Where("deleted_at IS NULL").
		OrderBy("created_at DESC, id DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "GetAll", "todo", sqlStr, args)

	rows, err := tr.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	if err := tr.scanner.ScanRowsToSlice(rows, &todos); err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "GetAll", "todo", time.Since(startTime), nil)

	return todos, nil
}

func (tr *TodoRepository) GetByUUID(ctx context.Context, uid string) (domain.Todo, error) {
	query := tr.db.QueryBuilder.Select("*").
		From("todos").
		Where(sq.Eq{"uuid": uid}).
		Where("deleted_at IS NULL").
		Limit(1)

	sqlStr, args, err := query.ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	rows, err := tr.db.QueryContext(ctx, sqlStr, args...)

	if err != nil {
		return domain.Todo{}, err
	}

	defer rows.Close()

	var todo domain.Todo
	err = tr.scanner.ScanRowToStruct(rows, &todo)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "todos",
		"db.operation": "INSERT",
		"todo.uuid":    todo.UUID.String(),
	})
	defer span.End()

	startTime := time.Now()

	uid := todo.UUID.String()

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("uuid", "text", "completed", "created_at", "updated_at").
		Values(uid, todo.Text, todo.Completed, todo.CreatedAt, todo.UpdatedAt).
		ToSql()

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", "todo", query, args)

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	saved, err := tr.GetByUUID(ctx, uid)
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordBusinessEvent(ctx, "created", "todo", saved.UUID.String(), map[string]interface{}{
		"text":       saved.Text,
		"created_at": saved.CreatedAt.Format(time.RFC3339),
	})

	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "Create", "todo", time.Since(startTime), nil)

	return saved, nil
}

// SetCompleted updates exactly the completed column of one row. Text and
// created_at are never part of the statement.
func (tr *TodoRepository) SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "SetCompleted", "todo", map[string]interface{}{
		"db.system":      "sqlite",
		"db.table":       "todos",
		"db.operation":   "UPDATE",
		"todo.uuid":      uid,
		"todo.completed": completed,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update("todos").
		Set("completed", completed).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"uuid": uid}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "SetCompleted", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "SetCompleted", "todo", query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "SetCompleted", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		span.SetStatus("error", domain.ErrNotFound.Error())
		tr.telemetry.RecordRepositoryOperation(ctx, "SetCompleted", "todo", time.Since(startTime), domain.ErrNotFound)
		return domain.Todo{}, domain.ErrNotFound
	}

	updated, err := tr.GetByUUID(ctx, uid)
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "SetCompleted", "todo", time.Since(startTime), err)
		return domain.Todo{}, err
	}

	tr.telemetry.RecordBusinessEvent(ctx, "updated", "todo", updated.UUID.String(), map[string]interface{}{
		"completed": updated.Completed,
	})

	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, "SetCompleted", "todo", time.Since(startTime), nil)

	return updated, nil
}

// DeleteByUUID soft-deletes at most one row. A uid that matches nothing
// reports ErrNotFound; callers decide whether that matters.
func (tr *TodoRepository) DeleteByUUID(ctx context.Context, uid string) error {
	stmt, err := tr.db.PrepareContext(ctx, "UPDATE todos SET deleted_at = ? WHERE uuid = ? AND deleted_at IS NULL")

	if err != nil {
		return err
	}

	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, time.Now(), uid)

	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

package handler

import (
	"errors"
	"net/http"

	. "kubetodo/internal/adapter/http/helper"
	. "kubetodo/internal/adapter/http/validation"
	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/model/request"
	"kubetodo/internal/core/model/response"
	"kubetodo/internal/core/port"
	"kubetodo/pkg/logging"
	"kubetodo/pkg/telemetry"
	. "kubetodo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc     port.TodoService
	Logger  *logging.AppLogger
	Metrics *telemetry.AppMetrics
}

func NewTodoHandler(svc port.TodoService, logger *logging.AppLogger, metrics *telemetry.AppMetrics) *TodoHandler {
	return &TodoHandler{
		svc:     svc,
		Logger:  logger,
		Metrics: metrics,
	}
}

func bindRequest[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, err
	}

	return params, nil
}

func (t *TodoHandler) recordOperation(c *gin.Context, operation string) {
	if t.Metrics != nil {
		t.Metrics.RecordTodoOperation(c.Request.Context(), operation)
	}
}

func toResponse(todo domain.Todo) response.TodoResponse {
	return response.TodoResponse{
		ID:        todo.UUID,
		Text:      todo.Text,
		Completed: todo.Completed,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// ListTodos returns the full collection as a bare array, newest first.
// This endpoint doubles as the platform liveness and readiness probe.
func (t *TodoHandler) ListTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.ListTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTodos"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	todos, err := t.svc.List(ctx)

	if err != nil {
		AddSpanError(span, err)

		if t.Logger != nil {
			t.Logger.Logger.Ctx(ctx).Error("Failed to list todos", zap.Error(err))
		}

		SendInternalError(c, "Error getting todos")
		return
	}

	data := make([]response.TodoResponse, 0, len(todos))

	for _, todo := range todos {
		data = append(data, toResponse(todo))
	}

	span.SetAttributes(attribute.Int("todo.count", len(data)))

	c.JSON(http.StatusOK, data)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := bindRequest[request.CreateTodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.svc.Create(ctx, params.Text)

	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			SendBadRequestError(c, "text", "text must not be empty")
			return
		}

		if t.Logger != nil {
			t.Logger.Logger.Ctx(ctx).Error("Failed to create todo", zap.Error(err))
		}

		SendInternalError(c, "Error creating todo")
		return
	}

	t.recordOperation(c, "created")

	c.JSON(http.StatusCreated, toResponse(todo))
}

// UpdateTodo mutates exactly the completed flag. Any text in the body is
// ignored; an id that does not resolve reports 400, not 404.
func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := bindRequest[request.UpdateTodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.svc.SetCompleted(ctx, c.Param("id"), *params.Completed)

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			SendNotFoundAsBadRequest(c, "todo not found")
			return
		}

		if t.Logger != nil {
			t.Logger.Logger.Ctx(ctx).Error("Failed to update todo", zap.Error(err))
		}

		SendInternalError(c, "Error updating todo")
		return
	}

	t.recordOperation(c, "updated")

	c.JSON(http.StatusOK, toResponse(todo))
}

// DeleteTodo acknowledges with 204 whether or not the id existed.
func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	if err := t.svc.Delete(ctx, c.Param("id")); err != nil {
		if t.Logger != nil {
			t.Logger.Logger.Ctx(ctx).Error("Failed to delete todo", zap.Error(err))
		}

		SendInternalError(c, "Error deleting todo")
		return
	}

	t.recordOperation(c, "deleted")

	c.Status(http.StatusNoContent)
}

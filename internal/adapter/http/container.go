package http

import (
	"kubetodo/internal/adapter/database/sqlite"
	repository "kubetodo/internal/adapter/database/sqlite/repository"
	"kubetodo/internal/adapter/http/handler"
	"kubetodo/internal/core/port"
	"kubetodo/internal/core/service"
	"kubetodo/pkg/logging"
	"kubetodo/pkg/telemetry"
)

// Container holds every constructed dependency. Wiring happens here once
// at startup; nothing below the container reaches for globals.
type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService
	TodoHandler *handler.TodoHandler
}

func NewContainer(db *sqlite.DB, logger *logging.AppLogger, probe port.Telemetry, metrics *telemetry.AppMetrics) *Container {
	todoRepo := repository.NewTodoRepository(db, probe)
	todoSvc := service.NewTodoService(todoRepo, probe)
	todoHandler := handler.NewTodoHandler(todoSvc, logger, metrics)

	return &Container{
		TodoRepo:    todoRepo,
		TodoService: todoSvc,
		TodoHandler: todoHandler,
	}
}

// NewContainerWithRepository is the test-double entry point: any
// TodoRepository can stand in for the store.
func NewContainerWithRepository(repo port.TodoRepository, logger *logging.AppLogger, probe port.Telemetry, metrics *telemetry.AppMetrics) *Container {
	todoSvc := service.NewTodoService(repo, probe)
	todoHandler := handler.NewTodoHandler(todoSvc, logger, metrics)

	return &Container{
		TodoRepo:    repo,
		TodoService: todoSvc,
		TodoHandler: todoHandler,
	}
}

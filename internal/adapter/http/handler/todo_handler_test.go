package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	. "kubetodo/pkg/test"

	"kubetodo/internal/adapter/database/sqlite/repository"
	adapterhttp "kubetodo/internal/adapter/http"
	"kubetodo/internal/adapter/http/handler"
	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
	"kubetodo/internal/core/service"
	"kubetodo/pkg/telemetry"
)

type todoJSON struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"created_at"`
}

type TodoHandlerSuite struct {
	suite.Suite
	TodoRepo port.TodoRepository
	Registry *prometheus.Registry
	Router   *gin.Engine
}

func (s *TodoHandlerSuite) SetupTest() {
	db := InitTestDB()

	s.TodoRepo = repository.NewTodoRepository(db, nil)
	todoService := service.NewTodoService(s.TodoRepo, nil)

	s.Registry = prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(s.Registry)

	s.Router = adapterhttp.SetupRouterForTests(adapterhttp.HandlersConfig{
		TodoHandler: handler.NewTodoHandler(todoService, nil, metrics),
	})
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func (s *TodoHandlerSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).To(BeNil())
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	return w
}

func (s *TodoHandlerSuite) listTodos() []todoJSON {
	w := s.request(http.MethodGet, "/api/todos", nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	var todos []todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &todos)).To(Succeed())

	return todos
}

func (s *TodoHandlerSuite) TestHandler_List_EmptyIsBareArray() {
	w := s.request(http.MethodGet, "/api/todos", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(MatchJSON("[]"))
}

func (s *TodoHandlerSuite) TestHandler_FullLifecycle() {
	// POST -> 201 with a generated id
	w := s.request(http.MethodPost, "/api/todos", gin.H{"text": "Learn Kubernetes!"})

	Expect(w.Code).To(Equal(http.StatusCreated))

	var created todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())
	Expect(created.ID).ToNot(BeEmpty())
	Expect(created.Text).To(Equal("Learn Kubernetes!"))
	Expect(created.Completed).To(BeFalse())

	// GET -> array containing that todo first
	todos := s.listTodos()
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(created.ID))

	// PUT {completed:true} -> 200 with completed:true, text untouched
	w = s.request(http.MethodPut, "/api/todos/"+created.ID, gin.H{"completed": true})

	Expect(w.Code).To(Equal(http.StatusOK))

	var updated todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &updated)).To(Succeed())
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Text).To(Equal("Learn Kubernetes!"))
	Expect(updated.CreatedAt).To(Equal(created.CreatedAt))

	// DELETE -> 204
	w = s.request(http.MethodDelete, "/api/todos/"+created.ID, nil)

	Expect(w.Code).To(Equal(http.StatusNoContent))

	// subsequent GET excludes it
	Expect(s.listTodos()).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestHandler_Create_NewestFirst() {
	s.request(http.MethodPost, "/api/todos", gin.H{"text": "older"})
	s.request(http.MethodPost, "/api/todos", gin.H{"text": "newer"})

	todos := s.listTodos()

	Expect(todos).To(HaveLen(2))
	Expect(todos[0].Text).To(Equal("newer"))
	Expect(todos[1].Text).To(Equal("older"))
}

func (s *TodoHandlerSuite) TestHandler_Create_MissingTextIsRejected() {
	w := s.request(http.MethodPost, "/api/todos", gin.H{})

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(w.Body.String()).To(ContainSubstring("error"))

	// nothing was persisted
	Expect(s.listTodos()).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestHandler_Create_MalformedBodyIsRejected() {
	req := httptest.NewRequest(http.MethodPost, "/api/todos", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestHandler_Update_UnknownIdentifier() {
	w := s.request(http.MethodPut, "/api/todos/2f7a1f64-9c7c-4cbe-93c2-91a0e309b5a4", gin.H{"completed": true})

	Expect(w.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestHandler_Update_MissingCompletedIsRejected() {
	w := s.request(http.MethodPost, "/api/todos", gin.H{"text": "needs a flag"})

	var created todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

	w = s.request(http.MethodPut, "/api/todos/"+created.ID, gin.H{})

	Expect(w.Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestHandler_Update_IgnoresTextField() {
	w := s.request(http.MethodPost, "/api/todos", gin.H{"text": "immutable"})

	var created todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

	w = s.request(http.MethodPut, "/api/todos/"+created.ID, gin.H{"completed": true, "text": "rewritten"})

	Expect(w.Code).To(Equal(http.StatusOK))

	var updated todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &updated)).To(Succeed())
	Expect(updated.Text).To(Equal("immutable"))
	Expect(updated.Completed).To(BeTrue())
}

func (s *TodoHandlerSuite) TestHandler_Delete_UnknownIdentifierStillSucceeds() {
	w := s.request(http.MethodDelete, "/api/todos/2f7a1f64-9c7c-4cbe-93c2-91a0e309b5a4", nil)

	Expect(w.Code).To(Equal(http.StatusNoContent))
}

func (s *TodoHandlerSuite) counterValue(name, operation string) float64 {
	families, err := s.Registry.Gather()
	Expect(err).To(BeNil())

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetValue() == operation {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}

func (s *TodoHandlerSuite) TestHandler_Mutations_RecordOperationCounters() {
	w := s.request(http.MethodPost, "/api/todos", gin.H{"text": "count me"})

	var created todoJSON
	Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

	s.request(http.MethodPut, "/api/todos/"+created.ID, gin.H{"completed": true})
	s.request(http.MethodDelete, "/api/todos/"+created.ID, nil)

	Expect(s.counterValue("todo_operations_total", "created")).To(Equal(1.0))
	Expect(s.counterValue("todo_operations_total", "updated")).To(Equal(1.0))
	Expect(s.counterValue("todo_operations_total", "deleted")).To(Equal(1.0))
}

// failingRepository stands in for an unreachable store: every call fails.
type failingRepository struct{}

var errStoreDown = errors.New("store unavailable")

func (failingRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	return nil, errStoreDown
}

func (failingRepository) GetByUUID(ctx context.Context, uid string) (domain.Todo, error) {
	return domain.Todo{}, errStoreDown
}

func (failingRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	return domain.Todo{}, errStoreDown
}

func (failingRepository) SetCompleted(ctx context.Context, uid string, completed bool) (domain.Todo, error) {
	return domain.Todo{}, errStoreDown
}

func (failingRepository) DeleteByUUID(ctx context.Context, uid string) error {
	return errStoreDown
}

func newFailingRouter() *gin.Engine {
	container := adapterhttp.NewContainerWithRepository(failingRepository{}, nil, nil, nil)

	return adapterhttp.SetupRouterForTests(adapterhttp.HandlersConfig{
		TodoHandler: container.TodoHandler,
	})
}

func TestHandler_StoreUnavailable_ReportsInternalError(t *testing.T) {
	RegisterTestingT(t)

	router := newFailingRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusInternalServerError))
	Expect(w.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
	Expect(w.Body.String()).To(ContainSubstring(`"field":"server"`))
}

func TestHandler_StoreUnavailable_CreateReportsInternalError(t *testing.T) {
	RegisterTestingT(t)

	router := newFailingRouter()

	body := bytes.NewReader([]byte(`{"text":"doomed"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/todos", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusInternalServerError))
	Expect(w.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
}

func (s *TodoHandlerSuite) TestHandler_CORS_PreflightAccepted() {
	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://anywhere.example")

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusNoContent))
	Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
}

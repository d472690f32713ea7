package repository_test

import (
	"context"
	"testing"
	"time"

	. "kubetodo/pkg/test"

	"kubetodo/internal/adapter/database/sqlite/repository"
	"kubetodo/internal/core/domain"
	"kubetodo/internal/core/port"
	"kubetodo/pkg/test/factory"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	TodoRepo port.TodoRepository
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	db := InitTestDB()

	s.TodoRepo = repository.NewTodoRepository(db, nil)
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) createTodo(text string, createdAt time.Time) domain.Todo {
	todo, err := s.TodoRepo.Create(context.Background(), factory.NewTodo[domain.Todo](map[string]any{
		"UUID":      uuid.New(),
		"Text":      text,
		"Completed": false,
		"CreatedAt": createdAt,
		"UpdatedAt": createdAt,
		"DeletedAt": (*time.Time)(nil),
	}))

	Expect(err).To(BeNil())

	return todo
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_Empty() {
	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_Success() {
	todo := s.createTodo("Learn Kubernetes!", time.Now())

	Expect(todo.Text).To(Equal("Learn Kubernetes!"))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.ID).To(BeNumerically(">", 0))
	Expect(todo.UUID).ToNot(Equal(uuid.Nil))

	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Text).To(Equal("Learn Kubernetes!"))
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_OrderedNewestFirst() {
	base := time.Now().Add(-time.Hour)

	// insertion order deliberately differs from chronological order
	s.createTodo("second", base.Add(2*time.Minute))
	s.createTodo("first", base.Add(1*time.Minute))
	s.createTodo("third", base.Add(3*time.Minute))

	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(3))
	Expect(todos[0].Text).To(Equal("third"))
	Expect(todos[1].Text).To(Equal("second"))
	Expect(todos[2].Text).To(Equal("first"))
}

func (s *TodoRepositoryTestSuite) TestRepository_SetCompleted_RoundTrip() {
	created := s.createTodo("toggle me", time.Now())

	updated, err := s.TodoRepo.SetCompleted(context.Background(), created.UUID.String(), true)

	Expect(err).To(BeNil())
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Text).To(Equal(created.Text))
	Expect(updated.CreatedAt.Unix()).To(Equal(created.CreatedAt.Unix()))

	reverted, err := s.TodoRepo.SetCompleted(context.Background(), created.UUID.String(), false)

	Expect(err).To(BeNil())
	Expect(reverted.Completed).To(BeFalse())
	Expect(reverted.Text).To(Equal(created.Text))
	Expect(reverted.CreatedAt.Unix()).To(Equal(created.CreatedAt.Unix()))
}

func (s *TodoRepositoryTestSuite) TestRepository_SetCompleted_NotFound() {
	_, err := s.TodoRepo.SetCompleted(context.Background(), uuid.NewString(), true)

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_Delete_RemovesFromList() {
	created := s.createTodo("delete me", time.Now())
	kept := s.createTodo("keep me", time.Now().Add(time.Second))

	err := s.TodoRepo.DeleteByUUID(context.Background(), created.UUID.String())

	Expect(err).To(BeNil())

	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].UUID).To(Equal(kept.UUID))
}

func (s *TodoRepositoryTestSuite) TestRepository_Delete_SecondDeleteReportsNotFound() {
	created := s.createTodo("delete twice", time.Now())

	Expect(s.TodoRepo.DeleteByUUID(context.Background(), created.UUID.String())).To(Succeed())

	err := s.TodoRepo.DeleteByUUID(context.Background(), created.UUID.String())

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoRepositoryTestSuite) TestRepository_GetByUUID_NotFound() {
	_, err := s.TodoRepo.GetByUUID(context.Background(), uuid.NewString())

	Expect(err).To(MatchError(domain.ErrNotFound))
}

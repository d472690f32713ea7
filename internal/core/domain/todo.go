package domain

import (
	"time"

	"github.com/google/uuid"
)

// Todo is the single domain entity: a text item with a completion flag.
// UUID is the public identifier; ID is the store rowid and never leaves
// the repository layer. Text and CreatedAt are immutable after creation.
type Todo struct {
	ID        int
	UUID      uuid.UUID
	Text      string `validate:"required,min=1,max=1000"`
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

package request

// CreateTodoRequest carries the only field a caller may set at creation.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// UpdateTodoRequest binds only the completed flag. Completed is a pointer
// so an absent field is distinguishable from an explicit false.
type UpdateTodoRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

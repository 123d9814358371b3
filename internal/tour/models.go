package tour

type Tour struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Description *string `json:"description"`
	CreatedByID *int64  `json:"createdById"`
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Location    string  `json:"location" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	CreatedByID *int64  `json:"createdById"`
}

// UpdateInput is a PUT body. Name and location are kept when absent,
// description is always replaced.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	CreatedByID *int64  `json:"createdById"`
}

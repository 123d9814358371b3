package point

// Point is a stop within a tour. Latitude and longitude are decimal strings.
type Point struct {
	ID            int64   `json:"id"`
	TourID        int64   `json:"tourId"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Latitude      string  `json:"latitude"`
	Longitude     string  `json:"longitude"`
	PhotoFilename *string `json:"photoFilename"`
	AudioFilename *string `json:"audioFilename"`
	VideoFilename *string `json:"videoFilename"`
	Order         *int    `json:"order"`
}

type CreateInput struct {
	TourID        int64   `json:"tourId"`
	Name          string  `json:"name" validate:"required,notblank,max=255"`
	Description   *string `json:"description"`
	Latitude      string  `json:"latitude" validate:"required,notblank,numeric"`
	Longitude     string  `json:"longitude" validate:"required,notblank,numeric"`
	PhotoFilename *string `json:"photoFilename" validate:"omitempty,max=255"`
	AudioFilename *string `json:"audioFilename" validate:"omitempty,max=255"`
	VideoFilename *string `json:"videoFilename" validate:"omitempty,max=255"`
	Order         *int    `json:"order"`
}

// UpdateInput is a PUT body. Nil means the field was absent or null;
// see Service.UpdatePoint for how each field treats that.
type UpdateInput struct {
	TourID        *int64  `json:"tourId"`
	Name          *string `json:"name" validate:"omitempty,max=255"`
	Description   *string `json:"description"`
	Latitude      *string `json:"latitude" validate:"omitempty,numeric"`
	Longitude     *string `json:"longitude" validate:"omitempty,numeric"`
	PhotoFilename *string `json:"photoFilename" validate:"omitempty,max=255"`
	AudioFilename *string `json:"audioFilename" validate:"omitempty,max=255"`
	VideoFilename *string `json:"videoFilename" validate:"omitempty,max=255"`
	Order         *int    `json:"order"`
}

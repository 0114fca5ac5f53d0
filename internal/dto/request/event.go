package request

type CreateEventRequest struct {
	Name           string  `json:"name" validate:"required,min=3,max=255"`
	EventDate      string  `json:"event_date" validate:"required"` // YYYY-MM-DD
	EventTime      string  `json:"event_time" validate:"required"` // HH:MM
	Address        string  `json:"address" validate:"required,min=5"`
	Latitude       *string `json:"latitude,omitempty"`
	Longitude      *string `json:"longitude,omitempty"`
	TotalSlots     int     `json:"total_slots" validate:"required,gt=0"`
	AdditionalInfo string  `json:"additional_info,omitempty"`
	Status         string  `json:"status" validate:"required,oneof=draft published"`
}

type UpdateEventRequest struct {
	CreateEventRequest
}

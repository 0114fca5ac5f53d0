package request

type UploadResultRequest struct {
	Category string `json:"result_category" validate:"required,oneof=normal follow_up_required"`
	Notes    string `json:"result_notes,omitempty" validate:"max=2000"`
	FileURL  string `json:"result_file_url,omitempty" validate:"omitempty,url"`
}

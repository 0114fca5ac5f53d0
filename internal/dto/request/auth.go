package request

type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterParticipantRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	MyKadID     string `json:"mykad_id" validate:"required,len=12,numeric"`
}

type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Purpose     string `json:"purpose" validate:"required,oneof=registration login result_access"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Code        string `json:"code" validate:"required,numeric"`
	Purpose     string `json:"purpose" validate:"required,oneof=registration login result_access"`
}

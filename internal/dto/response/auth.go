package response

import "time"

type SessionResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AdminAuthResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Session SessionResponse `json:"session"`
}

type ParticipantAuthResponse struct {
	Participant ParticipantResponse `json:"participant"`
	Session     SessionResponse     `json:"session"`
}

type OTPSentResponse struct {
	PhoneNumber   string `json:"phone_number"`
	Purpose       string `json:"purpose"`
	ExpiryMinutes int    `json:"expiry_minutes"`
}

package otp

import "time"

// SendRequest is the payload of POST /otp/send-otp.
type SendRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose" validate:"omitempty,oneof=create-admin reset-pin reset-email"`
}

// SendResponse acknowledges a sent code without revealing it.
type SendResponse struct {
	Email     string    `json:"email"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyRequest is the payload of POST /otp/verify-otp.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

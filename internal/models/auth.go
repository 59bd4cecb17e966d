package models

// CredentialsRequest is the body of sign-in and sign-up.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StartRequest is the optional body of POST /session.
type StartRequest struct {
	Token string `json:"token,omitempty"`
}

package models

// NavigateRequest is the body of PUT /view.
type NavigateRequest struct {
	Page string `json:"page" validate:"required"`
}

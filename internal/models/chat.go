package models

// Chat roles understood by the generative endpoint.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one visible line of the AI chat.
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// AffirmationRequest is the body of POST /ai/affirmation.
type AffirmationRequest struct {
	Draft string `json:"draft"`
}

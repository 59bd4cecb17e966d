package models

// Notice kinds.
const (
	NoticeAuth     = "auth"
	NoticeMutation = "mutation"
	NoticeAI       = "ai"
)

// Notice is a user-facing message slot.
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

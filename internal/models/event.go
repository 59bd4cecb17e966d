package models

import "time"

// Routing keys of domain events.
const (
	EventPostCreated    = "post.created"
	EventPostReacted    = "post.reacted"
	EventPostDeleted    = "post.deleted"
	EventMessageCreated = "message.created"
)

// Event is published after every successful mutation.
type Event struct {
	Type       string    `json:"type"`
	AppID      string    `json:"appId"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"documentId"`
	ActorID    string    `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
}

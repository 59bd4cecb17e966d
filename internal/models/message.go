package models

import "time"

// Message is a community chat entry. Messages are never edited or deleted.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewMessage is the insert payload for a message.
type NewMessage struct {
	AppID      string
	Content    string
	AuthorID   string
	AuthorName string
}

// CreateMessageRequest is the body of POST /messages.
type CreateMessageRequest struct {
	Content string `json:"content" validate:"max=2000"`
}

package models

import "time"

// Post is a Freedom Wall entry.
type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	AuthorID      string    `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	IsAnonymous   bool      `json:"isAnonymous"`
	CreatedAt     time.Time `json:"createdAt"`
	ReactionCount int       `json:"reactionCount"`
}

// NewPost is what the mutation layer hands to storage; id and createdAt come back from it.
type NewPost struct {
	AppID       string
	Content     string
	AuthorID    string
	AuthorName  string
	IsAnonymous bool
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	Content   string `json:"content" validate:"max=2000"`
	Anonymous bool   `json:"anonymous"`
}

// ReactionRequest is the body of POST /posts/{id}/reactions. CurrentCount is the
// count the client last observed.
type ReactionRequest struct {
	CurrentCount int `json:"currentCount" validate:"gte=0"`
}

// DeletePostRequest is the body of DELETE /posts/{id}.
type DeletePostRequest struct {
	AuthorID string `json:"authorId" validate:"required"`
}

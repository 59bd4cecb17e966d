package view

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Eka2r/Padayon/internal/models"
)

// PostItem is a post as rendered in the live stream.
type PostItem struct {
	models.Post
	CreatedAgo string `json:"createdAgo"`
}

// MessageItem is a message as rendered in the live stream.
type MessageItem struct {
	models.Message
	CreatedAgo string `json:"createdAgo"`
}

// Ago renders t relative to now. A zero time renders empty.
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Posts decorates posts for rendering.
func Posts(items []models.Post, now time.Time) []PostItem {
	out := make([]PostItem, len(items))
	for i, p := range items {
		out[i] = PostItem{Post: p, CreatedAgo: Ago(p.CreatedAt, now)}
	}
	return out
}

// Messages decorates messages for rendering.
func Messages(items []models.Message, now time.Time) []MessageItem {
	out := make([]MessageItem, len(items))
	for i, m := range items {
		out[i] = MessageItem{Message: m, CreatedAgo: Ago(m.CreatedAt, now)}
	}
	return out
}

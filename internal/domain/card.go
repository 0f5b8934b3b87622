package domain

import "time"

// Card is a single rankable item with display metadata. A card belongs to
// exactly one session; its lifetime is bounded by the session's lifetime.
// Rank position is not stored on the card - that is the session ledger's job.
type Card struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	LinkURL     string    `json:"linkUrl,omitempty"`
	Tags        []string  `json:"tags"`
}

// CardDraft carries the caller-supplied fields for a new card. Constraint
// checking (title length, URL shape, tag limits) happens at the request
// boundary before a draft is built.
type CardDraft struct {
	Title       string
	Description string
	ImageURL    string
	LinkURL     string
	Tags        []string
}

package models

import "time"

// StoryDocument is the persisted shape of an ephemeral story
type StoryDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Content   string    `bson:"content,omitempty"`
	ImageURL  string    `bson:"imageUrl,omitempty"`
	VideoURL  string    `bson:"videoUrl,omitempty"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Story represents a user's story
type Story struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	VideoURL  string    `json:"videoUrl,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// StoryView is a story joined with its author.
type StoryView struct {
	Story
	User User `json:"user"`
}

// CreateStoryRequest defines the request body for creating a story
type CreateStoryRequest struct {
	Content  string `json:"content,omitempty" validate:"omitempty,max=500"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	VideoURL string `json:"videoUrl,omitempty" validate:"omitempty,max=2048"`
}

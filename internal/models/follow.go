package models

import "time"

// FollowDocument is a directed follow edge, unique per (follower, following) pair
type FollowDocument struct {
	ID          string    `bson:"_id"`
	FollowerID  string    `bson:"followerId"`
	FollowingID string    `bson:"followingId"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// FollowResult is the outcome of a follow toggle
type FollowResult struct {
	Following bool `json:"following"`
}

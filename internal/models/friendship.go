package models

// Friendship states for an ordered (requester, recipient) pair.
const (
	FriendStateNone    = "none"
	FriendStatePending = "pending"
	FriendStateFriends = "friends"
)

// FriendshipResponse reports the relationship state after a friend operation
type FriendshipResponse struct {
	UserID string `json:"userId"`
	State  string `json:"state"`
}

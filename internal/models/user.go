package models

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
)

// Link is an entry of a user's "other links" list.
type Link struct {
	Label string `json:"label" bson:"label" validate:"max=50"`
	URL   string `json:"url" bson:"url" validate:"required,url"`
}

// UserDocument is the persisted shape of a user in the users collection.
type UserDocument struct {
	ID              string     `bson:"_id"`
	Email           string     `bson:"email,omitempty"`
	FirstName       string     `bson:"firstName,omitempty"`
	LastName        string     `bson:"lastName,omitempty"`
	ProfileImageURL string     `bson:"profileImageUrl,omitempty"`
	Bio             string     `bson:"bio,omitempty"`
	Title           string     `bson:"title,omitempty"`
	Address         string     `bson:"address,omitempty"`
	Gender          string     `bson:"gender,omitempty"`
	DateOfBirth     *time.Time `bson:"dateOfBirth,omitempty"`
	PhoneNumber     string     `bson:"phoneNumber,omitempty"`
	OtherLinks      []Link     `bson:"otherLinks,omitempty"`
	Role            string     `bson:"role,omitempty"`
	Status          string     `bson:"status,omitempty"`
	FriendRequests  []string   `bson:"friendRequests,omitempty"`
	Friends         []string   `bson:"friends,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

// User is the application-facing user entity.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email,omitempty"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	Title           string     `json:"title,omitempty"`
	Address         string     `json:"address,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber     string     `json:"phoneNumber,omitempty"`
	OtherLinks      []Link     `json:"otherLinks"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	FriendRequests  []string   `json:"friendRequests"`
	Friends         []string   `json:"friends"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// UpsertUser is the input for creating or syncing a user document.
// Empty fields are left untouched on an existing document.
type UpsertUser struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
	Bio             string
	Title           string
	Role            string
	Status          string
	CreatedAt       time.Time
}

// UpdateProfileRequest defines the request body for editing the caller's profile
type UpdateProfileRequest struct {
	FirstName       string     `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName        string     `json:"lastName,omitempty" validate:"omitempty,max=50"`
	ProfileImageURL string     `json:"profileImageUrl,omitempty" validate:"omitempty,max=2048"`
	Bio             string     `json:"bio,omitempty" validate:"omitempty,max=500"`
	Title           string     `json:"title,omitempty" validate:"omitempty,max=100"`
	Address         string     `json:"address,omitempty" validate:"omitempty,max=200"`
	Gender          string     `json:"gender,omitempty" validate:"omitempty,max=30"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber     string     `json:"phoneNumber,omitempty" validate:"omitempty,max=30"`
	OtherLinks      []Link     `json:"otherLinks,omitempty" validate:"omitempty,max=10,dive"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == "" && r.LastName == "" && r.ProfileImageURL == "" && r.Bio == "" &&
		r.Title == "" && r.Address == "" && r.Gender == "" && r.DateOfBirth == nil &&
		r.PhoneNumber == "" && r.OtherLinks == nil
}

// Profile is a user together with the follow graph counters computed on read.
type Profile struct {
	User
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	IsFollowing    bool  `json:"isFollowing"`
}

// UserPage is one page of a user listing.
type UserPage struct {
	Items      []User `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

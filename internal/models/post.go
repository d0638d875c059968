package models

import "time"

// PostDocument is the persisted shape of a post. The like count is never
// stored; it is the size of LikedBy.
type PostDocument struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"userId"`
	Content       string    `bson:"content"`
	ImageURL      string    `bson:"imageUrl,omitempty"`
	VideoURL      string    `bson:"videoUrl,omitempty"`
	LikedBy       []string  `bson:"likedBy"`
	CommentsCount int       `bson:"commentsCount"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// Post represents a unit of shared content
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"imageUrl"`
	VideoURL      *string   `json:"videoUrl"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PostView is a post joined with its author and the viewer's like flag.
type PostView struct {
	Post
	User    User `json:"user"`
	IsLiked bool `json:"isLiked"`
}

// PostPage is one page of a post feed.
type PostPage struct {
	Items      []PostView `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// CreatePostRequest defines the request body for creating a new post.
// Media URLs are whatever the upload endpoint returned, so they may be relative.
type CreatePostRequest struct {
	Content  string `json:"content" validate:"max=5000"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	VideoURL string `json:"videoUrl,omitempty" validate:"omitempty,max=2048"`
}

// HasBody reports whether the request carries text or media.
func (r CreatePostRequest) HasBody() bool {
	return r.Content != "" || r.ImageURL != "" || r.VideoURL != ""
}

// SearchResult is the combined response of the search endpoint
type SearchResult struct {
	Users []User     `json:"users"`
	Posts []PostView `json:"posts"`
	Query string     `json:"query"`
}

package repositories

import "github.com/anonto42/linkup/backend/internal/models"

// MapUser converts a persisted user document into the canonical User shape.
// Missing role and status default to user/active; nil sets become empty.
func MapUser(doc models.UserDocument) models.User {
	user := models.User{
		ID:              doc.ID,
		Email:           doc.Email,
		FirstName:       doc.FirstName,
		LastName:        doc.LastName,
		ProfileImageURL: doc.ProfileImageURL,
		Bio:             doc.Bio,
		Title:           doc.Title,
		Address:         doc.Address,
		Gender:          doc.Gender,
		DateOfBirth:     doc.DateOfBirth,
		PhoneNumber:     doc.PhoneNumber,
		OtherLinks:      doc.OtherLinks,
		Role:            doc.Role,
		Status:          doc.Status,
		FriendRequests:  doc.FriendRequests,
		Friends:         doc.Friends,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	if user.OtherLinks == nil {
		user.OtherLinks = []models.Link{}
	}
	if user.FriendRequests == nil {
		user.FriendRequests = []string{}
	}
	if user.Friends == nil {
		user.Friends = []string{}
	}
	return user
}

// MapPost converts a post document; the like count is the liker set size.
func MapPost(doc models.PostDocument) models.Post {
	return models.Post{
		ID:            doc.ID,
		UserID:        doc.UserID,
		Content:       doc.Content,
		ImageURL:      optional(doc.ImageURL),
		VideoURL:      optional(doc.VideoURL),
		LikesCount:    len(doc.LikedBy),
		CommentsCount: doc.CommentsCount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

// MapComment converts a comment document.
func MapComment(doc models.CommentDocument) models.Comment {
	return models.Comment{
		ID:        doc.ID,
		PostID:    doc.PostID,
		UserID:    doc.UserID,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}
}

// MapStory converts a story document.
func MapStory(doc models.StoryDocument) models.Story {
	return models.Story{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Content:   doc.Content,
		ImageURL:  doc.ImageURL,
		VideoURL:  doc.VideoURL,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package models

import "time"

// Moderation actions
const (
	ActionSuspendUser  = "suspend_user"
	ActionActivateUser = "activate_user"
	ActionBanUser      = "ban_user"
	ActionDeletePost   = "delete_post"
	ActionPurgeStories = "purge_stories"
)

// ModerationAction is an audit record of an admin action (PostgreSQL)
type ModerationAction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AdminID    string    `json:"adminId" gorm:"size:64;index"`
	Action     string    `json:"action" gorm:"size:30;index"`
	TargetType string    `json:"targetType" gorm:"size:20"` // user, post, story
	TargetID   string    `json:"targetId" gorm:"size:64;index"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// ModerationRequest is the optional body of an admin action
type ModerationRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	ActiveUsers    int64 `json:"activeUsers"`
	SuspendedUsers int64 `json:"suspendedUsers"`
	BannedUsers    int64 `json:"bannedUsers"`
	TotalPosts     int64 `json:"totalPosts"`
	TotalComments  int64 `json:"totalComments"`
	ActiveStories  int64 `json:"activeStories"`
}

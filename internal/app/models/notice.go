package models

import "time"

// NoticePriority orders notices in listings
type NoticePriority string

const (
	NoticeLow    NoticePriority = "LOW"
	NoticeNormal NoticePriority = "NORMAL"
	NoticeHigh   NoticePriority = "HIGH"
	NoticeUrgent NoticePriority = "URGENT"
)

// NoticeStatus is the explicit lifecycle state of a notice
type NoticeStatus string

const (
	NoticePublished NoticeStatus = "PUBLISHED"
	NoticeArchived  NoticeStatus = "ARCHIVED"
)

// Notice is an announcement targeted at role and/or department sets.
// Empty target sets mean "everyone".
type Notice struct {
	ID            int64          `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Body          string         `json:"body" db:"body"`
	AuthorID      int64          `json:"authorId" db:"author_id"` // user
	Priority      NoticePriority `json:"priority" db:"priority"`
	Status        NoticeStatus   `json:"status" db:"status"`
	TargetRoles   []Role         `json:"targetRoles"`
	TargetDepts   []int64        `json:"targetDepartmentIds"`
	AttachmentURL *string        `json:"attachmentUrl,omitempty" db:"attachment_url"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`

	ViewCount int `json:"viewCount,omitempty"` // derived
}

// NoticeView is one "mark as read" entry in a notice's view log
type NoticeView struct {
	NoticeID int64     `json:"noticeId" db:"notice_id"`
	UserID   int64     `json:"userId" db:"user_id"`
	ViewedAt time.Time `json:"viewedAt" db:"viewed_at"`
}

// IsExpired reports whether the notice has passed its expiry at time now.
func (n *Notice) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// Targets reports whether the notice addresses a caller with the given role
// and department. Empty sets match everyone.
func (n *Notice) Targets(role Role, departmentID int64) bool {
	if len(n.TargetRoles) > 0 {
		found := false
		for _, r := range n.TargetRoles {
			if r == role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(n.TargetDepts) > 0 {
		found := false
		for _, d := range n.TargetDepts {
			if d == departmentID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

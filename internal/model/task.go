package model

import "strings"

// Task represents a single item in a category list.
// Content is opaque rich text; the engine only ever trims it for comparison.
type Task struct {
	ID               int64  `gorm:"primaryKey"`
	CategoryID       int64  `gorm:"index;not null"`
	Content          string `gorm:"not null"`
	Completed        bool
	BulletColor      int64
	TextColor        int64
	ScheduledTime    *int64 `gorm:"index"`
	SortOrder        int    `gorm:"index"`
	CreatedAt        int64  `gorm:"autoCreateTime:false"`
	UpdatedAt        int64  `gorm:"autoUpdateTime:false"`
	FromCalendarSync bool
}

// Title is the trimmed content, used as the calendar idempotence key.
func (t Task) Title() string {
	return strings.TrimSpace(t.Content)
}

func (t Task) IsTimed() bool {
	return t.ScheduledTime != nil
}

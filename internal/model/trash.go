package model

// TrashEntry is a restorable snapshot of a deleted task.
// CategoryName is captured at deletion time so the entry stays readable after
// the category itself is gone.
type TrashEntry struct {
	ID                 int64 `gorm:"primaryKey"`
	OriginalCategoryID int64 `gorm:"index"`
	Content            string
	Completed          bool
	BulletColor        int64
	TextColor          int64
	ScheduledTime      *int64
	SortOrder          int
	DeletedAt          int64 `gorm:"index"`
	CategoryName       string
}

// SnapshotTask copies the restorable fields of a task into a trash entry.
func SnapshotTask(t Task, categoryName string, deletedAt int64) TrashEntry {
	entry := TrashEntry{
		OriginalCategoryID: t.CategoryID,
		Content:            t.Content,
		Completed:          t.Completed,
		BulletColor:        t.BulletColor,
		TextColor:          t.TextColor,
		SortOrder:          t.SortOrder,
		DeletedAt:          deletedAt,
		CategoryName:       categoryName,
	}
	if t.ScheduledTime != nil {
		v := *t.ScheduledTime
		entry.ScheduledTime = &v
	}
	return entry
}

// RestoredTask builds a fresh task from the snapshot. The id is left zero so
// the store assigns a new one.
func (e TrashEntry) RestoredTask(now int64) Task {
	task := Task{
		CategoryID:  e.OriginalCategoryID,
		Content:     e.Content,
		Completed:   e.Completed,
		BulletColor: e.BulletColor,
		TextColor:   e.TextColor,
		SortOrder:   e.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if e.ScheduledTime != nil {
		v := *e.ScheduledTime
		task.ScheduledTime = &v
	}
	return task
}

// CalendarDismissed permanently suppresses re-import of one event title into
// one category.
type CalendarDismissed struct {
	ID         int64  `gorm:"primaryKey"`
	CategoryID int64  `gorm:"uniqueIndex:idx_dismissed_category_title;not null"`
	EventTitle string `gorm:"uniqueIndex:idx_dismissed_category_title;not null"`
}

func (CalendarDismissed) TableName() string {
	return "calendar_dismissed"
}

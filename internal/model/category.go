package model

// DisplayMode controls how a category renders its tasks.
type DisplayMode string

const (
	DisplayCheckbox DisplayMode = "checkbox"
	DisplayBullet   DisplayMode = "bullet"
)

// Category is a named, ordered bucket of tasks with its own display, ordering,
// calendar-sync and notification settings.
type Category struct {
	ID                    int64       `gorm:"primaryKey"`
	Name                  string      `gorm:"not null"`
	Position              int         `gorm:"index"`
	DisplayMode           DisplayMode `gorm:"default:checkbox"`
	TasksWithTimeFirst    bool
	TimedEntriesAscending bool
	AutoSortTimedEntries  bool
	SyncWithCalendar      bool
	NotifyEnabled         bool
	NotifyLeadMinutes     int
	DefaultBulletColor    int64
	DefaultTextColor      int64
	CreatedAt             int64 `gorm:"autoCreateTime:false"`
	UpdatedAt             int64 `gorm:"autoUpdateTime:false"`
}

// OrderingSettings is the subset of a category consulted by the ordering policy.
type OrderingSettings struct {
	AutoSortTimedEntries  bool
	TimedEntriesAscending bool
	TasksWithTimeFirst    bool
}

func (c Category) Ordering() OrderingSettings {
	return OrderingSettings{
		AutoSortTimedEntries:  c.AutoSortTimedEntries,
		TimedEntriesAscending: c.TimedEntriesAscending,
		TasksWithTimeFirst:    c.TasksWithTimeFirst,
	}
}

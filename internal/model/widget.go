package model

// WidgetConfig is the per-widget render configuration. A widget with PresetID
// set renders the category assignments of that preset instead of its own.
// Presets themselves use negative widget ids. HideCompleted drops completed
// tasks from every block.
type WidgetConfig struct {
	WidgetID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Name            string
	BackgroundColor int64
	HideCompleted   bool
	PresetID        *int64 `gorm:"index"`
	CreatedAt       int64  `gorm:"autoCreateTime:false"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:false"`
}

// AssignmentSource is the widget id whose category assignments are rendered.
func (w WidgetConfig) AssignmentSource() int64 {
	if w.PresetID != nil {
		return *w.PresetID
	}
	return w.WidgetID
}

// WidgetCategory assigns a category to a widget. The category reference is
// weak: it may point at a category that no longer exists.
type WidgetCategory struct {
	WidgetID   int64 `gorm:"primaryKey;autoIncrement:false"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false;index"`
	SortOrder  int
	Visible    bool
}

// AppState is a small key/value table for engine bookkeeping timestamps.
type AppState struct {
	Name  string `gorm:"primaryKey"`
	Value int64
}

func (AppState) TableName() string {
	return "app_state"
}

package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"widget-planner/internal/model"
)

// TrashRepository stores snapshots of deleted tasks.
type TrashRepository struct {
	db *gorm.DB
}

func NewTrashRepository(db *gorm.DB) *TrashRepository {
	return &TrashRepository{db: db}
}

func (r *TrashRepository) Create(ctx context.Context, entry *model.TrashEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create trash entry: %w", err)
	}
	return nil
}

func (r *TrashRepository) GetByID(ctx context.Context, id int64) (*model.TrashEntry, error) {
	var entry model.TrashEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

// List returns entries newest first.
func (r *TrashRepository) List(ctx context.Context) ([]model.TrashEntry, error) {
	var entries []model.TrashEntry
	if err := r.db.WithContext(ctx).Order("deleted_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	return entries, nil
}

func (r *TrashRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.TrashEntry{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete trash entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every trash entry.
func (r *TrashRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.TrashEntry{}).Error; err != nil {
		return fmt.Errorf("clear trash: %w", err)
	}
	return nil
}

// DeleteOlderThan removes entries deleted before cutoff and reports how many went.
func (r *TrashRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("deleted_at < ?", cutoff).Delete(&model.TrashEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge trash: %w", res.Error)
	}
	return res.RowsAffected, nil
}

package assessment

import (
	"context"
	"strings"

	types "github.com/toeiclab/toeic-backend/internal/domain"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, items []*types.Item) (int64, error)
	GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.Item, error)
	Find(ctx context.Context, tx *gorm.DB, filter types.ItemFilter, limit int) ([]*types.Item, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

// Upsert inserts items or overwrites the classification and answer of
// existing ones, keyed by item_key.
func (r *itemRepo) Upsert(ctx context.Context, tx *gorm.DB, items []*types.Item) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"part", "level", "test_key", "position", "answer", "updated_at"}),
		}).
		Create(&items)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *itemRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Item
	if len(keys) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("item_key IN ?", keys).
		Order("test_key, position, item_key").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemRepo) Find(ctx context.Context, tx *gorm.DB, filter types.ItemFilter, limit int) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Item{})
	if p := strings.TrimSpace(filter.Part); p != "" {
		q = q.Where("part = ?", p)
	}
	if filter.Level > 0 {
		q = q.Where("level = ?", filter.Level)
	}
	if t := strings.TrimSpace(filter.TestKey); t != "" {
		q = q.Where("test_key = ?", t)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var results []*types.Item
	if err := q.Order("test_key, position, item_key").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

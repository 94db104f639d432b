package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
)

// Item is an item-bank question. Content and media live elsewhere; the
// backend only needs the key, classification and answer.
type Item struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ItemKey  string    `gorm:"column:item_key;not null;uniqueIndex" json:"item_key"`
	Part     string    `gorm:"column:part;not null;index:idx_item_part_level,priority:1" json:"part"`
	Level    int       `gorm:"column:level;not null;default:1;index:idx_item_part_level,priority:2" json:"level"`
	TestKey  string    `gorm:"column:test_key;index" json:"test_key"`
	Position int       `gorm:"column:position;not null;default:0" json:"position"`
	Answer   string    `gorm:"column:answer;not null" json:"-"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Item) TableName() string { return "item" }

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Core is the grading view of the item.
func (i *Item) Core() core.Item {
	return core.Item{ID: i.ItemKey, Part: core.Part(i.Part), Answer: i.Answer}
}

// ItemFilter selects items for test assembly. Zero fields do not filter.
type ItemFilter struct {
	Part    string
	Level   int
	TestKey string
}

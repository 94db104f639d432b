package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

const maxItemListLimit = 200

type ItemService interface {
	// List returns items for test assembly. Answers never leave the
	// service boundary; the model does not serialize them.
	List(ctx context.Context, filter types.ItemFilter, limit int) ([]*types.Item, error)
}

type itemService struct {
	log      *logger.Logger
	itemRepo repos.ItemRepo
}

func NewItemService(log *logger.Logger, itemRepo repos.ItemRepo) ItemService {
	serviceLog := log.With("service", "ItemService")
	return &itemService{log: serviceLog, itemRepo: itemRepo}
}

func (s *itemService) List(ctx context.Context, filter types.ItemFilter, limit int) ([]*types.Item, error) {
	if strings.TrimSpace(filter.Part) != "" {
		p, err := core.ParsePart(filter.Part)
		if err != nil {
			return nil, err
		}
		filter.Part = string(p)
	}
	if filter.Level < 0 || filter.Level > int(core.MaxLevel) {
		return nil, fmt.Errorf("%w: level %d out of range", core.ErrInvalidInput, filter.Level)
	}
	if limit <= 0 || limit > maxItemListLimit {
		limit = maxItemListLimit
	}
	return s.itemRepo.Find(ctx, nil, filter, limit)
}

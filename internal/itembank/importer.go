package itembank

import (
	"context"
	"fmt"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

const defaultBatchSize = 200

type Result struct {
	Parsed   int
	Upserted int64
	Rejected []RowError
}

type Importer struct {
	log       *logger.Logger
	itemRepo  repos.ItemRepo
	batchSize int
}

func NewImporter(log *logger.Logger, itemRepo repos.ItemRepo) *Importer {
	return &Importer{
		log:       log.With("component", "ItemImporter"),
		itemRepo:  itemRepo,
		batchSize: defaultBatchSize,
	}
}

// ImportFile parses path and upserts its valid rows by key. Rejected rows
// are reported in the result and do not abort the import.
func (im *Importer) ImportFile(ctx context.Context, path, sheet string) (*Result, error) {
	parsed, err := ReadFile(path, sheet)
	if err != nil {
		return nil, err
	}
	return im.Import(ctx, parsed)
}

func (im *Importer) Import(ctx context.Context, sheet *Sheet) (*Result, error) {
	res := &Result{Parsed: len(sheet.Items), Rejected: sheet.Errors}
	for start := 0; start < len(sheet.Items); start += im.batchSize {
		end := start + im.batchSize
		if end > len(sheet.Items) {
			end = len(sheet.Items)
		}
		n, err := im.itemRepo.Upsert(ctx, nil, sheet.Items[start:end])
		if err != nil {
			return res, fmt.Errorf("upsert rows %d-%d: %w", start+2, end+1, err)
		}
		res.Upserted += n
	}
	for _, re := range sheet.Errors {
		im.log.Warn("rejected item row", "line", re.Line, "error", re.Err)
	}
	im.log.Info("item import finished", "parsed", res.Parsed, "upserted", res.Upserted, "rejected", len(res.Rejected))
	return res, nil
}

package itembank

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
)

// Column headers, matched case-insensitively. key, part and answer are
// required; the rest may be absent.
const (
	ColKey      = "key"
	ColPart     = "part"
	ColAnswer   = "answer"
	ColLevel    = "level"
	ColTest     = "test"
	ColPosition = "position"
)

var ErrMissingHeader = errors.New("itembank: missing required column")

// RowError reports one rejected row; line numbers are 1-based and count the
// header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// Sheet is the parsed content of an item-bank file.
type Sheet struct {
	Items  []*types.Item
	Errors []RowError
}

// ReadFile parses .xlsx or .csv by extension. sheet selects the workbook
// sheet and defaults to the first one.
func ReadFile(path, sheet string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, sheet)
	default:
		return nil, fmt.Errorf("itembank: unsupported file type %q", filepath.Ext(path))
	}
}

func ReadCSV(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("itembank: read csv: %w", err)
	}
	return parseRows(rows)
}

func ReadXLSX(r io.Reader, sheet string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("itembank: open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("itembank: read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingHeader)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{ColKey, ColPart, ColAnswer} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, req)
		}
	}

	out := &Sheet{}
	seen := map[string]int{}
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		it, err := parseRow(row, cols, line)
		if err != nil {
			out.Errors = append(out.Errors, RowError{Line: line, Err: err})
			continue
		}
		if prev, dup := seen[it.ItemKey]; dup {
			out.Errors = append(out.Errors, RowError{Line: line, Err: fmt.Errorf("duplicate key %q (first on line %d)", it.ItemKey, prev)})
			continue
		}
		seen[it.ItemKey] = line
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func parseRow(row []string, cols map[string]int, line int) (*types.Item, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	key := cell(ColKey)
	if key == "" {
		return nil, errors.New("empty key")
	}
	part, err := core.ParsePart(cell(ColPart))
	if err != nil {
		return nil, err
	}
	answer := strings.ToUpper(cell(ColAnswer))
	if len(answer) != 1 || answer[0] < 'A' || answer[0] > 'D' {
		return nil, fmt.Errorf("answer %q must be one of A-D", cell(ColAnswer))
	}

	level := 1
	if raw := cell(ColLevel); raw != "" {
		level, err = strconv.Atoi(raw)
		if err != nil || level < 1 || level > int(core.MaxLevel) {
			return nil, fmt.Errorf("level %q must be 1-%d", raw, core.MaxLevel)
		}
	}
	position := line - 1
	if raw := cell(ColPosition); raw != "" {
		position, err = strconv.Atoi(raw)
		if err != nil || position < 0 {
			return nil, fmt.Errorf("position %q must be a non-negative integer", raw)
		}
	}

	return &types.Item{
		ItemKey:  key,
		Part:     string(part),
		Answer:   answer,
		Level:    level,
		TestKey:  cell(ColTest),
		Position: position,
	}, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

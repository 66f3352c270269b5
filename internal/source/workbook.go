package source

import (
	"context"
	"strings"
	"sync"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Workbook reads an XLSX file holding one sheet per dataset. The first row of a
// sheet is its header. Sheet names match datasets case-insensitively.
type Workbook struct {
	// Separators applies to numbers stored as text.
	Separators Separators

	mu sync.Mutex
	f  *excelize.File
}

// OpenWorkbook opens path for reading.
func OpenWorkbook(path string) (*Workbook, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("xlsx source: workbook_path is not set")
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	return &Workbook{f: f}, nil
}

func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func (w *Workbook) sheet(dataset string) (string, bool) {
	for _, s := range w.f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), dataset) {
			return s, true
		}
	}
	return "", false
}

// Load streams the dataset's sheet. Cells are read as displayed and inferred like CSV cells.
func (w *Workbook) Load(ctx context.Context, dataset string) (*record.RecordSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	name, ok := w.sheet(dataset)
	if !ok {
		return nil, errors.Wrapf(ErrDatasetNotFound, "no sheet %q", dataset)
	}
	it, err := w.f.Rows(name)
	if err != nil {
		return nil, errors.Wrapf(err, "sheet %s", name)
	}
	defer it.Close()

	var header []string
	var rows [][]string
	for n := 0; it.Next(); n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		vals, err := it.Columns()
		if err != nil {
			return nil, errors.Wrapf(err, "sheet %s row %d", name, n+1)
		}
		if header == nil {
			if blank(vals) {
				continue
			}
			header = vals
			continue
		}
		if blank(vals) {
			continue
		}
		rows = append(rows, vals)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "sheet %s", name)
	}
	if header == nil {
		return record.Empty(), nil
	}
	rs, err := fromText(header, rows, w.Separators)
	if err != nil {
		return nil, errors.Wrapf(err, "sheet %s", name)
	}
	return rs, nil
}

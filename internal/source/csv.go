package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/pkg/errors"
)

// CSVDir reads <dir>/<dataset>.csv, or .tsv when no .csv exists.
type CSVDir struct {
	Dir        string
	Separators Separators
}

// NewCSVDir checks that dir exists.
func NewCSVDir(dir string) (*CSVDir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("csv source: data_dir is not set")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "csv source")
	}
	if !st.IsDir() {
		return nil, errors.Errorf("csv source: %s is not a directory", dir)
	}
	return &CSVDir{Dir: dir}, nil
}

func (c *CSVDir) Close() error { return nil }

func (c *CSVDir) path(dataset string) (string, error) {
	for _, ext := range []string{".csv", ".tsv"} {
		p := filepath.Join(c.Dir, dataset+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrDatasetNotFound, "%s in %s", dataset, c.Dir)
}

// Load reads one dataset file. A file holding only a header gives an empty set.
func (c *CSVDir) Load(ctx context.Context, dataset string) (*record.RecordSet, error) {
	p, err := c.path(dataset)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "open csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(p)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return record.Empty(), nil
		}
		return nil, errors.Wrapf(err, "read header of %s", p)
	}
	var rows [][]string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", p, line)
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	rs, err := fromText(header, rows, c.Separators)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", p)
	}
	return rs, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

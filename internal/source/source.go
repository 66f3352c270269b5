package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Loader materializes one dataset (orders, order_items, products, inventory) as a
// RecordSet. Implementations must be safe for concurrent Load calls.
type Loader interface {
	Load(ctx context.Context, dataset string) (*record.RecordSet, error)
	Close() error
}

// ErrDatasetNotFound is returned when a source has no table, sheet or file for a dataset.
var ErrDatasetNotFound = errors.New("dataset not found")

// Options selects and configures a loader.
type Options struct {
	Kind         string
	DataDir      string
	WorkbookPath string

	// Number separators for CSV and XLSX text cells, as ParseSeparators reads them.
	DecimalSeparator   string
	ThousandsSeparator string

	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	DSN      string

	QueryTimeout time.Duration
}

// Opener constructs a loader from options.
type Opener func(Options) (Loader, error)

var (
	mu       sync.RWMutex
	registry = map[string]Opener{}
)

// Register adds a loader kind.
func Register(kind string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = open
}

// Kinds lists registered loader kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open returns the loader registered for opt.Kind.
func Open(opt Options) (Loader, error) {
	mu.RLock()
	open, ok := registry[opt.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q (want one of %v)", opt.Kind, Kinds())
	}
	return open(opt)
}

func init() {
	Register("csv", func(o Options) (Loader, error) {
		sep, err := ParseSeparators(o.DecimalSeparator, o.ThousandsSeparator)
		if err != nil {
			return nil, err
		}
		c, err := NewCSVDir(o.DataDir)
		if err != nil {
			return nil, err
		}
		c.Separators = sep
		return c, nil
	})
	Register("xlsx", func(o Options) (Loader, error) {
		sep, err := ParseSeparators(o.DecimalSeparator, o.ThousandsSeparator)
		if err != nil {
			return nil, err
		}
		w, err := OpenWorkbook(o.WorkbookPath)
		if err != nil {
			return nil, err
		}
		w.Separators = sep
		return w, nil
	})
	Register("sql", func(o Options) (Loader, error) { return OpenSQL(o) })
}

// LoadAll loads datasets concurrently. A dataset the source does not have is
// logged and left out of the result; reports over it build empty.
func LoadAll(ctx context.Context, l Loader, datasets []string, log logrus.FieldLogger) (map[string]*record.RecordSet, error) {
	var (
		resMu sync.Mutex
		out   = make(map[string]*record.RecordSet, len(datasets))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, ds := range datasets {
		ds := ds
		g.Go(func() error {
			start := time.Now()
			rs, err := l.Load(ctx, ds)
			entry := log.WithFields(logrus.Fields{"dataset": ds, "elapsed": time.Since(start).Round(time.Millisecond)})
			if errors.Is(err, ErrDatasetNotFound) {
				entry.Warn("dataset not available, reports over it will be empty")
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "load %s", ds)
			}
			entry.WithField("rows", rs.Len()).Debug("dataset loaded")
			resMu.Lock()
			out[ds] = rs
			resMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

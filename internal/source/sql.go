package source

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/retailboard/internal/record"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DefaultQueryTimeout bounds a single dataset query.
const DefaultQueryTimeout = 30 * time.Second

// driverNames maps configured drivers onto database/sql driver names.
var driverNames = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
	"sqlite":   "sqlite",
}

// SQL loads datasets from the back-office database with flat SELECTs. All
// windowing happens in the engine, never in the query.
type SQL struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	queries map[string]string
}

// OpenSQL opens a pooled connection for opt.Driver.
func OpenSQL(opt Options) (*SQL, error) {
	name, ok := driverNames[opt.Driver]
	if !ok {
		return nil, errors.Errorf("sql source: unsupported driver %q", opt.Driver)
	}
	dsn, err := buildDSN(opt)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", opt.Driver)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	return NewSQL(db, opt.Driver, opt.QueryTimeout), nil
}

// NewSQL wraps an existing handle. driver selects the query dialect.
func NewSQL(db *sql.DB, driver string, timeout time.Duration) *SQL {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &SQL{db: db, driver: driver, timeout: timeout, queries: queriesFor(driver)}
}

func (s *SQL) Close() error { return s.db.Close() }

// Ping checks connectivity.
func (s *SQL) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func buildDSN(opt Options) (string, error) {
	if opt.DSN != "" {
		return opt.DSN, nil
	}
	switch opt.Driver {
	case "mysql":
		port := opt.Port
		if port == 0 {
			port = 3306
		}
		cfg := mysql.NewConfig()
		cfg.User = opt.User
		cfg.Passwd = opt.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(opt.Host, strconv.Itoa(port))
		cfg.DBName = opt.Database
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN(), nil
	case "postgres":
		port := opt.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(opt.Host, strconv.Itoa(port)),
			Path:     "/" + opt.Database,
			RawQuery: "sslmode=disable",
		}
		switch {
		case opt.Password != "":
			u.User = url.UserPassword(opt.User, opt.Password)
		case opt.User != "":
			u.User = url.User(opt.User)
		}
		return u.String(), nil
	case "sqlite":
		if opt.Database == "" {
			return "", errors.New("sql source: db_name must name the sqlite file")
		}
		return opt.Database, nil
	}
	return "", errors.Errorf("sql source: unsupported driver %q", opt.Driver)
}

// Load runs the dataset's query under the configured timeout.
func (s *SQL) Load(ctx context.Context, dataset string) (*record.RecordSet, error) {
	q, ok := s.queries[dataset]
	if !ok {
		return nil, errors.Wrapf(ErrDatasetNotFound, "no query for %q", dataset)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", dataset)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(err, "column types")
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = fieldName(t.Name(), i)
	}
	var cells [][]record.Value
	raw := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrapf(err, "scan %s row %d", dataset, len(cells)+1)
		}
		vals := make([]record.Value, len(raw))
		for i, v := range raw {
			cell, err := sqlCell(types[i].DatabaseTypeName(), v)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d column %s", dataset, len(cells)+1, names[i])
			}
			vals[i] = cell
		}
		cells = append(cells, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", dataset)
	}
	return assemble(names, cells, nil)
}

// sqlCell converts a scanned driver value using the column's declared type. Text
// protocols hand numbers and dates over as bytes, so those are parsed here.
func sqlCell(typeName string, v any) (record.Value, error) {
	var text string
	switch x := v.(type) {
	case []byte:
		text = string(x)
	case string:
		text = x
	default:
		return record.FromAny(v)
	}
	switch columnClass(typeName) {
	case classInt:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return record.Value{}, err
		}
		return record.Int(i), nil
	case classDecimal:
		d, ok := parseNumeric(strings.TrimSpace(text), Separators{Decimal: '.'})
		if !ok {
			return record.Value{}, errors.Errorf("unreadable number %q", text)
		}
		return record.Dec(d), nil
	case classDate:
		if t, ok := parseTimeMaybe(strings.TrimSpace(text)); ok {
			return record.Date(t), nil
		}
		return record.Value{}, errors.Errorf("unreadable date %q", text)
	}
	return record.Str(text), nil
}

type class int

var intTypes = map[string]bool{
	"INT": true, "INTEGER": true, "TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "BIGINT": true,
	"INT2": true, "INT4": true, "INT8": true, "SERIAL": true, "BIGSERIAL": true,
}

const (
	classText class = iota
	classInt
	classDecimal
	classDate
)

// columnClass buckets driver type names such as "BIGINT", "UNSIGNED INT",
// "NUMERIC", "DECIMAL(10,2)", "TIMESTAMPTZ" or "DATETIME".
func columnClass(typeName string) class {
	t := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(strings.TrimPrefix(t, "UNSIGNED "))
	switch {
	case intTypes[t]:
		return classInt
	case t == "DECIMAL" || t == "NUMERIC" || t == "REAL" || t == "MONEY" || strings.HasPrefix(t, "FLOAT") || strings.HasPrefix(t, "DOUBLE"):
		return classDecimal
	case strings.HasPrefix(t, "DATE") || strings.HasPrefix(t, "TIMESTAMP"):
		return classDate
	}
	return classText
}

// File path: internal/records/source.go
package records

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
)

// ListingSource yields the full listings dataset. Implementations reload on
// every call; nothing is cached between requests.
type ListingSource interface {
	Listings(ctx context.Context) ([]Listing, error)
	Describe() string
}

// DocumentSource yields the knowledge corpus chunks.
type DocumentSource interface {
	Documents(ctx context.Context) ([]Chunk, error)
}

// CSVSource reads listings from a CSV export.
type CSVSource struct {
	Path string
}

func (s CSVSource) Listings(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadListings(s.Path)
}

func (s CSVSource) Describe() string {
	return "csv:" + s.Path
}

// FileDocuments reads the corpus from a plain text file.
type FileDocuments struct {
	Path string
}

func (d FileDocuments) Documents(ctx context.Context) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDocuments(d.Path)
}

// PostgresSource reads listings from a table whose columns carry the same
// names as the CSV headers.
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

// OpenPostgres prepares a pooled connection. The connection is verified with
// a ping so misconfiguration surfaces at startup.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn required", ErrSourceUnavailable)
	}
	if strings.TrimSpace(table) == "" {
		table = "anuncios"
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", ErrSourceUnavailable, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrSourceUnavailable, err)
	}
	common.Logger().Info("records: postgres listing source ready", "table", table)
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) Listings(ctx context.Context) ([]Listing, error) {
	query := "SELECT * FROM " + pq.QuoteIdentifier(s.table)
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrSourceUnavailable, s.table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns %s: %v", ErrSourceUnavailable, s.table, err)
	}
	var listings []Listing
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrSourceUnavailable, s.table, err)
		}
		listings = append(listings, NewListing(headers, stringify(values)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", ErrSourceUnavailable, s.table, err)
	}
	return listings, nil
}

func (s *PostgresSource) Describe() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func stringify(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			out[i] = ""
		case []byte:
			out[i] = string(val)
		case string:
			out[i] = val
		case int64:
			out[i] = strconv.FormatInt(val, 10)
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(val)
		case time.Time:
			out[i] = val.Format("2006-01-02")
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}

// NewListingSource picks the Postgres source when a DSN is configured and the
// CSV export otherwise.
func NewListingSource(ctx context.Context, cfg config.DataConfig) (ListingSource, error) {
	if strings.TrimSpace(cfg.ListingsDSN) != "" {
		return OpenPostgres(ctx, cfg.ListingsDSN, cfg.ListingsTable)
	}
	return CSVSource{Path: cfg.ListingsPath}, nil
}

// File path: internal/records/types.go
package records

import (
	"errors"
	"strings"

	"github.com/nicodishanthj/Katral_realty/internal/config"
)

// ErrSourceUnavailable is wrapped by every listing source failure.
var ErrSourceUnavailable = errors.New("listing source unavailable")

// Field is one named value of a listing, in dataset order.
type Field struct {
	Name  string
	Value string
}

// Listing is an immutable, order-preserving row of the listings dataset.
type Listing struct {
	fields []Field
}

// NewListing pairs headers with values. Callers guarantee equal lengths.
func NewListing(headers, values []string) Listing {
	fields := make([]Field, len(headers))
	for i, name := range headers {
		fields[i] = Field{Name: name, Value: values[i]}
	}
	return Listing{fields: fields}
}

// Get returns the raw value stored under the dataset header name.
func (l Listing) Get(name string) (string, bool) {
	for _, f := range l.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the listing's fields.
func (l Listing) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Haystack is every value, space joined and lower-cased.
func (l Listing) Haystack() string {
	values := make([]string, len(l.fields))
	for i, f := range l.fields {
		values[i] = f.Value
	}
	return strings.ToLower(strings.Join(values, " "))
}

func (l Listing) Len() int {
	return len(l.fields)
}

// Column is a logical listing attribute the engine reads.
type Column int

const (
	ColumnTitle Column = iota
	ColumnLocation
	ColumnPrice
	ColumnCharacteristics
	ColumnLink
	ColumnType
	ColumnDate
)

// Schema maps logical columns to the dataset's header names.
type Schema struct {
	headers map[Column]string
}

// NewSchema builds a Schema from configured header names.
func NewSchema(cols config.Columns) Schema {
	return Schema{headers: map[Column]string{
		ColumnTitle:           cols.Title,
		ColumnLocation:        cols.Location,
		ColumnPrice:           cols.Price,
		ColumnCharacteristics: cols.Characteristics,
		ColumnLink:            cols.Link,
		ColumnType:            cols.Type,
		ColumnDate:            cols.Date,
	}}
}

// DefaultSchema uses the headers of the scraped listings export.
func DefaultSchema() Schema {
	return NewSchema(config.DefaultColumns())
}

// Header returns the dataset header bound to col.
func (s Schema) Header(col Column) string {
	return s.headers[col]
}

// Value returns the column's value; ok is false when it is absent or empty.
func (s Schema) Value(l Listing, col Column) (string, bool) {
	header, ok := s.headers[col]
	if !ok || header == "" {
		return "", false
	}
	value, ok := l.Get(header)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Defaults is a per-column table of literals used when a value is missing.
type Defaults map[Column]string

// ValueOr returns the column's value or the literal from defaults.
func (s Schema) ValueOr(l Listing, col Column, defaults Defaults) string {
	if value, ok := s.Value(l, col); ok {
		return value
	}
	return defaults[col]
}

// Chunk is one separator-delimited span of the knowledge corpus.
type Chunk struct {
	Index int
	Text  string
}

// File path: internal/records/loader.go
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

// DocumentSeparator delimits chunks of the knowledge corpus.
const DocumentSeparator = "---"

const utf8BOM = "\ufeff"

// LoadListings reads a CSV file with a header row. Rows whose field count
// differs from the header are dropped. A missing or unreadable file is an
// error wrapping ErrSourceUnavailable.
func LoadListings(path string) ([]Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()
	listings, err := ReadListings(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, path, err)
	}
	return listings, nil
}

// ReadListings parses CSV listings from r.
func ReadListings(r io.Reader) ([]Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	headers = append([]string(nil), headers...)

	var (
		listings []Listing
		dropped  int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				dropped++
				continue
			}
			return nil, err
		}
		if len(row) != len(headers) {
			dropped++
			continue
		}
		listings = append(listings, NewListing(headers, row))
	}
	if dropped > 0 {
		common.Logger().Debug("records: malformed listing rows dropped", "dropped", dropped, "kept", len(listings))
	}
	return listings, nil
}

// LoadDocuments splits the corpus at path into chunks. A missing file yields
// an empty result rather than an error.
func LoadDocuments(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		common.Logger().Warn("records: knowledge corpus not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return SplitDocuments(string(data)), nil
}

// SplitDocuments cuts content at every separator, keeping corpus order.
func SplitDocuments(content string) []Chunk {
	if content == "" {
		return nil
	}
	parts := strings.Split(content, DocumentSeparator)
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, Chunk{Index: i, Text: part})
	}
	return chunks
}

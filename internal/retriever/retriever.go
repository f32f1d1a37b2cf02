// File path: internal/retriever/retriever.go
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/records"
)

const (
	defaultListingKeywordMin  = 3
	defaultDocumentKeywordMin = 4
	defaultListingLimit       = 3
)

// Retriever answers keyword queries against the listings dataset and the
// knowledge corpus. Both sources are read again on every call.
type Retriever struct {
	listings records.ListingSource
	docs     records.DocumentSource
	schema   records.Schema

	listingKeywordMin  int
	documentKeywordMin int
	listingLimit       int
}

type Option func(*Retriever)

// WithListingKeywordMin sets the length a keyword must exceed to be used
// against listings.
func WithListingKeywordMin(n int) Option {
	return func(r *Retriever) {
		if n >= 0 {
			r.listingKeywordMin = n
		}
	}
}

// WithDocumentKeywordMin sets the length a keyword must exceed to be used
// against the corpus.
func WithDocumentKeywordMin(n int) Option {
	return func(r *Retriever) {
		if n >= 0 {
			r.documentKeywordMin = n
		}
	}
}

// WithListingLimit caps how many listings are rendered.
func WithListingLimit(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.listingLimit = n
		}
	}
}

// WithSchema overrides the column mapping used when rendering listings.
func WithSchema(schema records.Schema) Option {
	return func(r *Retriever) {
		r.schema = schema
	}
}

func New(listings records.ListingSource, docs records.DocumentSource, opts ...Option) *Retriever {
	r := &Retriever{
		listings:           listings,
		docs:               docs,
		schema:             records.DefaultSchema(),
		listingKeywordMin:  defaultListingKeywordMin,
		documentKeywordMin: defaultDocumentKeywordMin,
		listingLimit:       defaultListingLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var listingDefaults = records.Defaults{
	records.ColumnTitle:    "Anuncio",
	records.ColumnLocation: "N/A",
	records.ColumnPrice:    "N/A",
}

// SearchListings renders up to the listing limit of rows containing any
// usable keyword. An unreadable dataset is reported as readable text so the
// caller can still hand it to the model; only context cancellation is
// returned as an error.
func (r *Retriever) SearchListings(ctx context.Context, query string) (string, error) {
	ctx, end := telemetry.StartSpan(ctx, "retriever.search_listings")
	defer end()

	logger := common.Logger()
	if r.listings == nil {
		return "Error: Archivo de anuncios no encontrado.", nil
	}
	listings, err := r.listings.Listings(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logger.Warn("retriever: listing source failed", "source", r.listings.Describe(), "error", err)
		if errors.Is(err, records.ErrSourceUnavailable) {
			return "Error: Archivo de anuncios no encontrado.", nil
		}
		return fmt.Sprintf("Error: No se pudo leer la base de datos de anuncios (%v).", err), nil
	}

	keywords := Keywords(query, r.listingKeywordMin)
	var (
		b     strings.Builder
		found int
	)
	for _, listing := range listings {
		if found >= r.listingLimit {
			break
		}
		if !containsAny(listing.Haystack(), keywords) {
			continue
		}
		fmt.Fprintf(&b, "- %s en %s por %s.\n",
			r.schema.ValueOr(listing, records.ColumnTitle, listingDefaults),
			r.schema.ValueOr(listing, records.ColumnLocation, listingDefaults),
			r.schema.ValueOr(listing, records.ColumnPrice, listingDefaults),
		)
		found++
	}
	logger.Debug("retriever: listings searched", "keywords", len(keywords), "scanned", len(listings), "matches", found)
	if found == 0 {
		return fmt.Sprintf("No se encontraron anuncios relevantes para la consulta '%s'.", query), nil
	}
	return b.String(), nil
}

// SearchDocuments returns the first corpus chunk that contains a usable
// keyword.
func (r *Retriever) SearchDocuments(ctx context.Context, query string) (string, error) {
	ctx, end := telemetry.StartSpan(ctx, "retriever.search_documents")
	defer end()

	var chunks []records.Chunk
	if r.docs != nil {
		var err error
		chunks, err = r.docs.Documents(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			common.Logger().Warn("retriever: knowledge corpus failed", "error", err)
			return "Error: Base de conocimiento no encontrada.", nil
		}
	}

	keywords := Keywords(query, r.documentKeywordMin)
	for _, chunk := range chunks {
		if containsAny(strings.ToLower(chunk.Text), keywords) {
			common.Logger().Debug("retriever: corpus chunk matched", "chunk", chunk.Index)
			return "Sección relevante encontrada:\n" + strings.TrimSpace(chunk.Text) + "\n\n", nil
		}
	}
	return fmt.Sprintf("No se encontró información relevante en los documentos para la consulta '%s'.", query), nil
}

// Keywords lower-cases query, splits it on whitespace and keeps the words
// whose rune count exceeds min.
func Keywords(query string, min int) []string {
	fields := strings.Fields(strings.ToLower(query))
	keywords := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) > min {
			keywords = append(keywords, field)
		}
	}
	return keywords
}

func containsAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

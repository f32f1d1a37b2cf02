package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/Katral_realty/internal/config"
)

const sampleCSV = "\ufeffTítulo,Ubicación,Precio,Características,Enlace,Tipo,Fecha\n" +
	"Piso luminoso,\"Cádiz, Centro\",180.000 €,90 m² 3 hab.,https://example.test/1,Piso,2025-01-10\n" +
	"Fila rota,Cádiz,100 €\n" +
	"Ático con terraza,San Fernando,240.000 €,110 m² 2 hab.,https://example.test/2,Ático,2025-02-01\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadListingsDropsMalformedRows(t *testing.T) {
	path := writeFile(t, "anuncios.csv", sampleCSV)
	listings, err := LoadListings(path)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	schema := DefaultSchema()
	title, ok := schema.Value(listings[0], ColumnTitle)
	require.True(t, ok)
	assert.Equal(t, "Piso luminoso", title)
	location, _ := schema.Value(listings[0], ColumnLocation)
	assert.Equal(t, "Cádiz, Centro", location)

	fields := listings[1].Fields()
	assert.Equal(t, "Título", fields[0].Name)
	assert.Equal(t, "Fecha", fields[len(fields)-1].Name)
}

func TestLoadListingsMissingFile(t *testing.T) {
	_, err := LoadListings(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
}

func TestReadListingsEmptyInput(t *testing.T) {
	listings, err := ReadListings(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestHaystackLowercasesAllValues(t *testing.T) {
	l := NewListing([]string{"A", "B"}, []string{"Piso EN Cádiz", "90 M²"})
	assert.Equal(t, "piso en cádiz 90 m²", l.Haystack())
}

func TestSchemaValueOr(t *testing.T) {
	l := NewListing([]string{"Título", "Precio"}, []string{"Casa", ""})
	schema := DefaultSchema()
	defaults := Defaults{ColumnPrice: "N/A", ColumnLocation: "N/A"}
	assert.Equal(t, "Casa", schema.ValueOr(l, ColumnTitle, defaults))
	assert.Equal(t, "N/A", schema.ValueOr(l, ColumnPrice, defaults))
	assert.Equal(t, "N/A", schema.ValueOr(l, ColumnLocation, defaults))

	custom := NewSchema(config.Columns{Title: "Name"})
	_, ok := custom.Value(l, ColumnTitle)
	assert.False(t, ok)
}

func TestLoadDocumentsMissingFileIsEmpty(t *testing.T) {
	chunks, err := LoadDocuments(filepath.Join(t.TempDir(), "conocimiento.txt"))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitDocumentsKeepsOrder(t *testing.T) {
	path := writeFile(t, "conocimiento.txt", "LAU arrendamientos\n---\nHipotecas y gastos\n---\nPlusvalía municipal\n")
	chunks, err := FileDocuments{Path: path}.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Contains(t, chunks[1].Text, "Hipotecas")
}

func TestCSVSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CSVSource{Path: "unused.csv"}.Listings(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStringify(t *testing.T) {
	when := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	got := stringify([]interface{}{nil, []byte("Cádiz"), int64(90), 1.5, true, when})
	assert.Equal(t, []string{"", "Cádiz", "90", "1.5", "true", "2025-03-04"}, got)
}

func TestNewListingSourceDefaultsToCSV(t *testing.T) {
	src, err := NewListingSource(context.Background(), config.DataConfig{ListingsPath: "anuncios.csv"})
	require.NoError(t, err)
	assert.Equal(t, "csv:anuncios.csv", src.Describe())
}

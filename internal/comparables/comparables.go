// File path: internal/comparables/comparables.go
package comparables

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nicodishanthj/Katral_realty/internal/records"
)

const (
	// AreaMargin is the fraction of the target area accepted either side.
	AreaMargin = 0.25
	// Limit caps the number of comparables returned.
	Limit = 5

	locationKeywordMin = 3
)

// NoneFound is the stage-one text used when nothing matches.
const NoneFound = "No se encontraron propiedades directamente comparables en la base de datos. El análisis se basará en conocimiento general del mercado.\n"

var (
	areaPattern     = regexp.MustCompile(`(\d+)\s*m²`)
	locationSplitRe = regexp.MustCompile(`[\s,]+`)
)

// Target is the property under analysis.
type Target struct {
	Type     string  `json:"type"`
	Location string  `json:"location"`
	Area     float64 `json:"area"`
	Rooms    string  `json:"rooms"`
	Baths    string  `json:"baths"`
	State    string  `json:"state"`
	Features string  `json:"features"`
}

// Find selects listings in a matching location whose advertised area falls
// within AreaMargin of the target, cheapest first, at most Limit of them.
func Find(target Target, listings []records.Listing, schema records.Schema) []records.Listing {
	keywords := LocationKeywords(target.Location)
	margin := target.Area * AreaMargin
	low, high := target.Area-margin, target.Area+margin

	var matches []records.Listing
	for _, listing := range listings {
		location, ok := schema.Value(listing, records.ColumnLocation)
		if !ok {
			continue
		}
		features, ok := schema.Value(listing, records.ColumnCharacteristics)
		if !ok {
			continue
		}
		if !matchesLocation(strings.ToLower(location), keywords) {
			continue
		}
		area, ok := ExtractArea(features)
		if !ok || area < low || area > high {
			continue
		}
		matches = append(matches, listing)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return priceOf(matches[i], schema) < priceOf(matches[j], schema)
	})
	if len(matches) > Limit {
		matches = matches[:Limit]
	}
	return matches
}

// LocationKeywords splits a location on whitespace and commas, keeping the
// lower-cased words longer than three characters.
func LocationKeywords(location string) []string {
	parts := locationSplitRe.Split(strings.ToLower(location), -1)
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) > locationKeywordMin {
			keywords = append(keywords, part)
		}
	}
	return keywords
}

func matchesLocation(location string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(location, keyword) {
			return true
		}
	}
	return false
}

// ExtractArea returns the first "<digits> m²" figure in text.
func ExtractArea(text string) (float64, bool) {
	match := areaPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	area, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return area, true
}

// ParsePrice keeps only the digits of text. No digits yields zero; values
// that overflow saturate.
func ParsePrice(text string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0
	}
	price, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return price
}

func priceOf(listing records.Listing, schema records.Schema) int64 {
	value, _ := schema.Value(listing, records.ColumnPrice)
	return ParsePrice(value)
}

var renderDefaults = records.Defaults{
	records.ColumnTitle:           "Inmueble",
	records.ColumnLocation:        "ubicación similar",
	records.ColumnPrice:           "N/A",
	records.ColumnCharacteristics: "N/A",
}

// Render formats the comparable set as the market-analysis context block.
func Render(set []records.Listing, schema records.Schema) string {
	if len(set) == 0 {
		return NoneFound
	}
	var b strings.Builder
	b.WriteString("Se han encontrado las siguientes propiedades comparables en la base de datos:\n")
	for i, listing := range set {
		fmt.Fprintf(&b, "- Comparable %d: %s en %s con un precio de %s. Características: %s\n",
			i+1,
			schema.ValueOr(listing, records.ColumnTitle, renderDefaults),
			schema.ValueOr(listing, records.ColumnLocation, renderDefaults),
			schema.ValueOr(listing, records.ColumnPrice, renderDefaults),
			schema.ValueOr(listing, records.ColumnCharacteristics, renderDefaults),
		)
	}
	return b.String()
}

// ErrInvalidTarget is wrapped when a target lacks required attributes.
var ErrInvalidTarget = errors.New("invalid target property")

// Validate requires every attribute the analysis prompts embed.
func (t Target) Validate() error {
	var missing []string
	for name, value := range map[string]string{
		"type":     t.Type,
		"location": t.Location,
		"rooms":    t.Rooms,
		"baths":    t.Baths,
		"state":    t.State,
		"features": t.Features,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if t.Area <= 0 || math.IsNaN(t.Area) || math.IsInf(t.Area, 0) {
		missing = append(missing, "area")
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing %s", ErrInvalidTarget, strings.Join(missing, ", "))
}

// AreaText formats the area without a trailing fraction for whole numbers.
func (t Target) AreaText() string {
	return strconv.FormatFloat(t.Area, 'f', -1, 64)
}

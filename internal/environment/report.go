// File path: internal/environment/report.go
package environment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/llm"
)

var (
	// ErrInvalidInput rejects an empty address or a non-positive radius.
	ErrInvalidInput = errors.New("environment: invalid input")
	// ErrAddressNotFound means geocoding produced no match.
	ErrAddressNotFound = errors.New("environment: address not found")
	// ErrMapsUnavailable means the geocoding call itself failed.
	ErrMapsUnavailable = errors.New("environment: maps unavailable")
	// ErrUnavailable means the generation backend could not be reached.
	ErrUnavailable = errors.New("environment: generation unavailable")
	// ErrNotConfigured is returned when no Locator was wired.
	ErrNotConfigured = errors.New("environment: maps not configured")
)

const (
	// MaxRadius is the largest radius the nearby search accepts, in meters.
	MaxRadius     = 50000
	perTypeSample = 5
	temperature   = 0.7
)

// PlaceTypes are searched in this order and the prompt lists them the same way.
var PlaceTypes = []string{
	"restaurant", "cafe", "park", "school", "hospital", "supermarket",
	"bus_station", "train_station", "pharmacy", "atm", "police",
	"fire_station", "library", "gym", "shopping_mall", "bank", "university",
	"art_gallery", "movie_theater", "night_club", "spa", "zoo",
}

const reportTemplate = `Eres un asistente experto en análisis de entorno de propiedades en España. Genera un informe detallado y conciso del entorno para la propiedad ubicada en {{.address}} (Latitud: {{.lat}}, Longitud: {{.lng}}) con un radio de {{.radius}} metros. Incluye información sobre los siguientes puntos de interés encontrados:

{{.places}}
Por favor, estructura el informe con las siguientes secciones claras y con un tono profesional y objetivo:
1. Resumen de la Ubicación: Breve descripción general de la zona.
2. Servicios Esenciales Cercanos: Farmacias, supermercados, bancos, hospitales, escuelas.
3. Transporte y Conectividad: Paradas de autobús, estaciones de tren, acceso a carreteras.
4. Ocio y Estilo de Vida: Restaurantes, cafeterías, parques, gimnasios, lugares de entretenimiento.
5. Análisis General del Entorno: Una conclusión que resuma los pros y contras del entorno para un potencial residente o inversor.

IMPORTANTE:
La respuesta debe ser en español, en formato de texto plano sin ningún tipo de formato Markdown (sin asteriscos, hashtags, ni otros símbolos de formato). Solo texto limpio y bien estructurado con títulos numerados y listas simples usando guiones.
Menciona 1-2 ejemplos destacados por categoría, priorizando los más cercanos y/o mejor valorados (si hay datos de rating). Tras esto lista 5 ejemplos de lugares destacados, por ejemplo: "Entre los lugares destacados se encuentran: [Nombre del lugar 1] a [distancia] metros, [Nombre del lugar 2] a [distancia] metros, etc.". Si no está disponible la distancia, obvia este dato.
Si no hay lugares en una categoría, menciona que "no se encontraron lugares relevantes" o "no se identificaron servicios destacados" para esa categoría.
NO inventes información. Basa todas las afirmaciones en los datos proporcionados.
El informe debe fluir como una narrativa.`

var reportPrompt = prompts.NewPromptTemplate(reportTemplate, []string{"address", "lat", "lng", "radius", "places"})

// Report is the generated environment summary for one address.
type Report struct {
	Address  string `json:"address"`
	Location Point  `json:"location"`
	Radius   int    `json:"radius"`
	Places   int    `json:"places_found"`
	Text     string `json:"report"`
}

// Reporter geocodes an address, gathers nearby points of interest and asks the
// model for a plain-text report.
type Reporter struct {
	locator Locator
	gen     llm.Generator
	types   []string
}

type Option func(*Reporter)

// WithPlaceTypes narrows the searched categories.
func WithPlaceTypes(types ...string) Option {
	return func(r *Reporter) {
		if len(types) > 0 {
			r.types = types
		}
	}
}

// NewReporter accepts a nil locator; Report then fails with ErrNotConfigured.
func NewReporter(locator Locator, gen llm.Generator, opts ...Option) *Reporter {
	r := &Reporter{locator: locator, gen: gen, types: PlaceTypes}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Reporter) Report(ctx context.Context, address string, radius int) (Report, error) {
	ctx, end := telemetry.StartSpan(ctx, "environment.report")
	defer end()
	logger := common.Logger()

	address = strings.TrimSpace(address)
	if address == "" || radius <= 0 {
		return Report{}, fmt.Errorf("%w: address %q radius %d", ErrInvalidInput, address, radius)
	}
	if r.locator == nil {
		return Report{}, ErrNotConfigured
	}

	point, ok, err := r.locator.Geocode(ctx, address)
	if err != nil {
		logger.Warn("environment: geocoding failed", "address", address, "error", err)
		return Report{}, fmt.Errorf("%w: %v", ErrMapsUnavailable, err)
	}
	if !ok {
		return Report{}, ErrAddressNotFound
	}

	effective := min(radius, MaxRadius)
	var places []Place
	for _, placeType := range r.types {
		found, err := r.locator.Nearby(ctx, point, effective, placeType)
		if err != nil {
			logger.Warn("environment: nearby search failed", "type", placeType, "error", err)
			continue
		}
		places = append(places, found...)
	}
	logger.Info("environment: places collected", "address", address, "count", len(places))

	prompt, err := BuildPrompt(address, point, radius, places)
	if err != nil {
		return Report{}, fmt.Errorf("render environment prompt: %w", err)
	}
	text, ok, err := r.gen.Generate(ctx, llm.Request{Prompt: prompt, Temperature: llm.Float(temperature)})
	if err != nil {
		return Report{}, fmt.Errorf("generate environment report: %w", err)
	}
	if !ok {
		return Report{}, ErrUnavailable
	}
	return Report{
		Address:  address,
		Location: point,
		Radius:   radius,
		Places:   len(places),
		Text:     CleanMarkdown(text),
	}, nil
}

// BuildPrompt groups places by category, keeping the first few names of each.
func BuildPrompt(address string, at Point, radius int, places []Place) (string, error) {
	var b strings.Builder
	if len(places) == 0 {
		b.WriteString("No se encontraron puntos de interés significativos en el radio especificado.\n")
	} else {
		b.WriteString("Puntos de interés cercanos:\n")
		var order []string
		grouped := make(map[string][]string)
		for _, p := range places {
			if _, seen := grouped[p.Type]; !seen {
				order = append(order, p.Type)
			}
			grouped[p.Type] = append(grouped[p.Type], fmt.Sprintf("%s (%s)", p.Name, p.Address))
		}
		for _, category := range order {
			names := grouped[category]
			line := strings.Join(names[:min(len(names), perTypeSample)], ", ")
			if len(names) > perTypeSample {
				line += " y más..."
			}
			fmt.Fprintf(&b, "- %s: %s\n", upperFirst(category), line)
		}
	}
	return reportPrompt.Format(map[string]any{
		"address": address,
		"lat":     strconv.FormatFloat(at.Lat, 'f', -1, 64),
		"lng":     strconv.FormatFloat(at.Lng, 'f', -1, 64),
		"radius":  strconv.Itoa(radius),
		"places":  b.String(),
	})
}

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},
	{regexp.MustCompile(`#+\s*`), ""},
	{regexp.MustCompile(`(?m)^-\s+`), "• "},
	{regexp.MustCompile(`\n\s*\n\s*\n`), "\n\n"},
}

// CleanMarkdown strips emphasis and headings and turns dash bullets into dots.
func CleanMarkdown(text string) string {
	for _, rule := range markdownRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// File path: internal/marketing/social.go
package marketing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/llm"
)

var (
	// ErrUnavailable means the generation backend could not be reached.
	ErrUnavailable = errors.New("marketing: generation unavailable")
	// ErrInvalidResponse means the model answered with something that is not
	// a JSON object.
	ErrInvalidResponse = errors.New("marketing: invalid JSON from model")
	// ErrInvalidInput rejects requests without a description.
	ErrInvalidInput = errors.New("marketing: invalid input")
)

const systemPrompt = "Eres un experto en marketing inmobiliario y copywriting para redes sociales. Tu tarea es generar textos de venta para un inmueble a partir de los datos proporcionados. Debes adaptar el tono y formato a cada plataforma solicitada."

const userTemplate = `Datos del inmueble:
{{.description}}

Genera los textos para las siguientes plataformas:
{{.instructions}}
IMPORTANTE: Devuelve tu respuesta exclusivamente como un objeto JSON válido. Las claves del JSON deben ser los nombres de las plataformas en minúsculas ('facebook', 'instagram', 'portales'). No incluyas nada más fuera del objeto JSON.`

var userPrompt = prompts.NewPromptTemplate(userTemplate, []string{"description", "instructions"})

// Platform instructions keyed by the lower-case platform name.
var platformInstructions = map[string]string{
	"facebook":  "- **Facebook:** Crea un texto para un público de 40-60 años. Usa un tono cercano y familiar. Destaca la comodidad, la ubicación y la vida tranquila. Longitud media. Usa 1 o 2 emojis apropiados (🏡🔑).",
	"instagram": "- **Instagram:** Crea un texto para un público de 25-40 años. Muy visual y directo. Frases cortas y enérgicas. Menciona las fotos ('Imagina despertar aquí...'). Usa varios emojis de tendencia (✨💎☀️).",
	"portales":  "- **Portales (Idealista, etc.):** Crea un texto profesional, detallado y optimizado para SEO. Estructura en párrafos claros: un resumen atractivo, una descripción detallada de las estancias, calidades y extras. Termina con una llamada a la acción clara para concertar una visita. Tono formal y vendedor. No uses emojis.",
}

const temperature = 0.7

// Generator writes platform-specific sales copy for a property.
type Generator struct {
	gen llm.Generator
}

func NewGenerator(gen llm.Generator) *Generator {
	return &Generator{gen: gen}
}

// BuildPrompt renders the user prompt. Unknown platforms are skipped and the
// requested order is kept.
func BuildPrompt(description string, platforms []string) (string, error) {
	var b strings.Builder
	for _, platform := range platforms {
		if instruction, ok := platformInstructions[platform]; ok {
			b.WriteString(instruction)
			b.WriteString("\n")
		}
	}
	return userPrompt.Format(map[string]any{
		"description":  description,
		"instructions": b.String(),
	})
}

// Generate returns the decoded JSON object produced by the model.
func (g *Generator) Generate(ctx context.Context, description string, platforms []string) (map[string]any, error) {
	ctx, end := telemetry.StartSpan(ctx, "marketing.generate")
	defer end()
	logger := common.Logger()

	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidInput)
	}
	prompt, err := BuildPrompt(description, platforms)
	if err != nil {
		return nil, fmt.Errorf("render social prompt: %w", err)
	}
	text, ok, err := g.gen.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      prompt,
		JSON:        true,
		Temperature: llm.Float(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("generate social copy: %w", err)
	}
	if !ok {
		return nil, ErrUnavailable
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err == nil && out != nil {
		return out, nil
	}
	if err := llm.DecodeObject(text, &out); err != nil {
		logger.Warn("marketing: model returned invalid JSON", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out, nil
}

// File path: internal/router/router.go
package router

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

// Tool is the closed set of actions the router may choose.
type Tool int

const (
	ToolUnknown Tool = iota
	ToolSearchListings
	ToolSearchDocuments
	ToolSearchWeb
	ToolDirectAnswer
)

var toolNames = map[Tool]string{
	ToolSearchListings:  "search_listings",
	ToolSearchDocuments: "search_documents",
	ToolSearchWeb:       "search_web",
	ToolDirectAnswer:    "direct_answer",
}

// ParseTool matches the exact, case-sensitive tool literal. Anything else is
// ToolUnknown.
func ParseTool(name string) Tool {
	for tool, literal := range toolNames {
		if literal == name {
			return tool
		}
	}
	return ToolUnknown
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return "unknown"
}

// Decision is the router's choice. Name keeps the literal the model
// returned, which may not be a known tool.
type Decision struct {
	Tool  Tool
	Name  string
	Query string
}

// RoutingFailure aborts a chat request: nothing usable came back from the
// routing call.
type RoutingFailure struct {
	Reason string
	Raw    string
	Err    error
}

const routingFailureMessage = "El agente no pudo decidir una acción o el formato de decisión es incorrecto."

func (e *RoutingFailure) Error() string {
	return routingFailureMessage
}

func (e *RoutingFailure) Unwrap() error {
	return e.Err
}

// DecisionSchema is the two-field object the router asks for.
var DecisionSchema = llm.Schema{
	Name: "tool_decision",
	Properties: map[string]any{
		"tool": map[string]any{
			"type": "string",
			"enum": []string{"search_listings", "search_documents", "search_web", "direct_answer"},
		},
		"query": map[string]any{"type": "string"},
	},
	Required: []string{"tool", "query"},
}

const routerTemplate = `Eres un agente 'router'. Tu trabajo es analizar la pregunta del usuario y decidir qué herramienta usar. Responde EXCLUSIVAMENTE con un objeto JSON que contenga 'tool' y 'query'.

Herramientas disponibles:
1. 'search_listings': Úsala si el usuario pregunta por propiedades específicas, listados, pisos, casas, alquileres o ventas en una zona. El 'query' debe ser la descripción de la búsqueda.
2. 'search_documents': Úsala si la pregunta es sobre leyes (LAU, LPH), contratos, gastos, hipotecas, o procesos de compra/alquiler. El 'query' debe ser el tema a buscar.
3. 'search_web': Úsala para preguntas sobre actualidad, eventos, noticias o información general que no se encuentre en los documentos locales (ej. '¿Qué tiempo hace en Cádiz?', '¿Cuándo empieza el COAC 2025?'). El 'query' debe ser la pregunta del usuario.
4. 'direct_answer': Úsala para saludos, preguntas generales que no requieren búsqueda, o si la pregunta no está relacionada con el sector inmobiliario. El 'query' debe ser la pregunta original.

Ejemplo de respuesta para la pregunta 'busco piso de 3 habitaciones en Cádiz':
{"tool": "search_listings", "query": "piso 3 habitaciones en Cádiz"}

Pregunta del usuario: "{{.query}}"

Tu respuesta JSON:`

var routerPrompt = prompts.NewPromptTemplate(routerTemplate, []string{"query"})

// Router classifies a free-text query with a single generation call.
type Router struct {
	gen llm.Generator
}

func New(gen llm.Generator) *Router {
	return &Router{gen: gen}
}

// BuildPrompt renders the routing instruction with query embedded verbatim.
func BuildPrompt(query string) (string, error) {
	return routerPrompt.Format(map[string]any{"query": query})
}

type rawDecision struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// Route makes one generation call and validates its output. There is no
// retry; any failure is a *RoutingFailure.
func (r *Router) Route(ctx context.Context, query string) (Decision, error) {
	ctx, end := telemetry.StartSpan(ctx, "router.route")
	defer end()
	logger := common.Logger()

	prompt, err := BuildPrompt(query)
	if err != nil {
		return Decision{}, fmt.Errorf("render router prompt: %w", err)
	}
	schema := DecisionSchema
	text, ok, err := r.gen.Generate(ctx, llm.Request{Prompt: prompt, Schema: &schema})
	if err != nil {
		return Decision{}, &RoutingFailure{Reason: "generation misuse", Err: err}
	}
	if !ok {
		logger.Warn("router: generation unavailable")
		return Decision{}, &RoutingFailure{Reason: "generation unavailable"}
	}

	var raw rawDecision
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		logger.Warn("router: decision not decodable", "error", err)
		return Decision{}, &RoutingFailure{Reason: "undecodable decision", Raw: text, Err: err}
	}
	if strings.TrimSpace(raw.Tool) == "" || strings.TrimSpace(raw.Query) == "" {
		return Decision{}, &RoutingFailure{Reason: "decision missing tool or query", Raw: text, Err: errors.New("tool and query are required")}
	}

	decision := Decision{Tool: ParseTool(raw.Tool), Name: raw.Tool, Query: raw.Query}
	telemetry.RecordRouterDecision(decision.Tool.String())
	logger.Info("router: decision made", "tool", decision.Name, "query", decision.Query)
	return decision, nil
}

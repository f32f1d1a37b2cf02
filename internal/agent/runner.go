// File path: internal/agent/runner.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/llm"
	"github.com/nicodishanthj/Katral_realty/internal/router"
)

// Apology replaces the final answer when generation is unavailable.
const Apology = "Error: No se pudo contactar con la IA."

const (
	StepReasoning  = "reasoning"
	StepToolResult = "tool_result"
)

// Step is one entry of the user-visible thinking trace.
type Step struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Answer is the outcome of one chat turn.
type Answer struct {
	Decision   router.Decision `json:"-"`
	Steps      []Step          `json:"thinking_process"`
	ToolOutput string          `json:"-"`
	Final      string          `json:"final_response"`
}

// Router picks a tool for a query.
type Router interface {
	Route(ctx context.Context, query string) (router.Decision, error)
}

// Searcher is any tool that turns a query into readable context.
type Searcher func(ctx context.Context, query string) (string, error)

// Tools binds the retrieval tools the dispatcher can run.
type Tools struct {
	Listings  Searcher
	Documents Searcher
	Web       Searcher
}

type Runner struct {
	gen    llm.Generator
	router Router
	tools  Tools
}

func NewRunner(gen llm.Generator, rt Router, tools Tools) *Runner {
	return &Runner{gen: gen, router: rt, tools: tools}
}

var toolTitles = map[router.Tool]string{
	router.ToolSearchListings:  "Buscando en la base de datos de anuncios 🔎",
	router.ToolSearchDocuments: "Consultando la base de conocimiento 📚",
	router.ToolSearchWeb:       "Buscando en internet en tiempo real 🌐",
}

const directTemplate = `Eres un experto en el sector inmobiliario en España. Responde de forma amable y concisa a la siguiente pregunta del usuario. Si la pregunta no es sobre inmobiliaria, responde cortésmente que solo puedes ayudar con temas del sector.

Pregunta: "{{.question}}"`

const synthesisTemplate = `Eres un experto en el sector inmobiliario en España. Tu tarea es responder a la pregunta del usuario usando la información de contexto que se te ha proporcionado. Basa tu respuesta PRINCIPALMENTE en este contexto.

Contexto Obtenido de la Herramienta '{{.tool}}':
---
{{.context}}
---

Pregunta Original del Usuario:
"{{.question}}"

Ahora, formula una respuesta clara y útil para el usuario.`

var (
	directPrompt    = prompts.NewPromptTemplate(directTemplate, []string{"question"})
	synthesisPrompt = prompts.NewPromptTemplate(synthesisTemplate, []string{"tool", "context", "question"})
)

// Answer routes the query, runs at most one tool and produces the final
// text. Only a routing failure or a cancelled context is returned as error.
func (r *Runner) Answer(ctx context.Context, query string) (Answer, error) {
	ctx, end := telemetry.StartSpan(ctx, "agent.answer")
	defer end()
	logger := common.Logger()

	decision, err := r.router.Route(ctx, query)
	if err != nil {
		return Answer{}, err
	}
	answer := Answer{Decision: decision}
	answer.Steps = append(answer.Steps, Step{
		Type:  StepReasoning,
		Title: "Decidiendo qué hacer...",
		Content: fmt.Sprintf("He analizado la pregunta y he decidido que la mejor acción es usar la herramienta `%s` para buscar sobre '%s'.",
			decision.Name, decision.Query),
	})

	var prompt string
	switch decision.Tool {
	case router.ToolSearchListings, router.ToolSearchDocuments, router.ToolSearchWeb:
		output, err := r.runTool(ctx, decision)
		if err != nil {
			return Answer{}, err
		}
		answer.ToolOutput = output
		answer.Steps = append(answer.Steps, Step{Type: StepToolResult, Title: toolTitles[decision.Tool], Content: output})
		prompt, err = synthesisPrompt.Format(map[string]any{
			"tool":     decision.Name,
			"context":  output,
			"question": query,
		})
		if err != nil {
			return Answer{}, fmt.Errorf("render synthesis prompt: %w", err)
		}
	case router.ToolDirectAnswer:
		prompt, err = directPrompt.Format(map[string]any{"question": query})
		if err != nil {
			return Answer{}, fmt.Errorf("render direct prompt: %w", err)
		}
	default:
		logger.Info("agent: unknown tool, answering directly", "tool", decision.Name)
		prompt, err = directPrompt.Format(map[string]any{"question": query})
		if err != nil {
			return Answer{}, fmt.Errorf("render direct prompt: %w", err)
		}
	}

	final, ok, err := r.gen.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return Answer{}, fmt.Errorf("generate final answer: %w", err)
	}
	if !ok {
		logger.Warn("agent: final generation unavailable; returning apology")
		final = Apology
	}
	answer.Final = final
	return answer, nil
}

func (r *Runner) runTool(ctx context.Context, decision router.Decision) (string, error) {
	var search Searcher
	switch decision.Tool {
	case router.ToolSearchListings:
		search = r.tools.Listings
	case router.ToolSearchDocuments:
		search = r.tools.Documents
	case router.ToolSearchWeb:
		search = r.tools.Web
	}
	telemetry.RecordToolInvocation(decision.Tool.String())
	if search == nil {
		common.Logger().Warn("agent: tool not configured", "tool", decision.Name)
		return fmt.Sprintf("Error: la herramienta %s no está disponible.", decision.Name), nil
	}
	output, err := search(ctx, decision.Query)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", decision.Name, err)
	}
	if strings.TrimSpace(output) == "" {
		return fmt.Sprintf("La herramienta %s no devolvió resultados.", decision.Name), nil
	}
	return output, nil
}

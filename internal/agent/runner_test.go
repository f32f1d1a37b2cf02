package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nicodishanthj/Katral_realty/internal/llm"
	"github.com/nicodishanthj/Katral_realty/internal/records"
	"github.com/nicodishanthj/Katral_realty/internal/retriever"
	"github.com/nicodishanthj/Katral_realty/internal/router"
)

type event struct {
	kind   string
	prompt string
}

type recorder struct {
	events  []event
	replies []string
	ok      []bool
}

func (r *recorder) Generate(ctx context.Context, req llm.Request) (string, bool, error) {
	idx := 0
	for _, e := range r.events {
		if e.kind == "generate" {
			idx++
		}
	}
	r.events = append(r.events, event{kind: "generate", prompt: req.Prompt})
	if idx >= len(r.replies) {
		return "", false, nil
	}
	return r.replies[idx], r.ok[idx], nil
}

type staticListings []records.Listing

func (s staticListings) Listings(context.Context) ([]records.Listing, error) { return s, nil }
func (s staticListings) Describe() string                                    { return "static" }

func TestAnswerCadizScenarioRunsRetrievalBeforeSynthesis(t *testing.T) {
	rec := &recorder{
		replies: []string{`{"tool":"search_listings","query":"piso 3 habitaciones en Cádiz"}`, "Tengo dos opciones para ti."},
		ok:      []bool{true, true},
	}
	headers := []string{"Título", "Ubicación", "Precio"}
	listings := staticListings{
		records.NewListing(headers, []string{"Piso reformado", "Cádiz", "180.000 €"}),
		records.NewListing(headers, []string{"Chalet", "Jerez", "400.000 €"}),
	}
	retr := retriever.New(listings, nil)
	tools := Tools{Listings: func(ctx context.Context, q string) (string, error) {
		rec.events = append(rec.events, event{kind: "retrieve", prompt: q})
		return retr.SearchListings(ctx, q)
	}}

	runner := NewRunner(rec, router.New(rec), tools)
	answer, err := runner.Answer(context.Background(), "busco piso de 3 habitaciones en Cádiz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kinds := make([]string, len(rec.events))
	for i, e := range rec.events {
		kinds[i] = e.kind
	}
	if got := strings.Join(kinds, ","); got != "generate,retrieve,generate" {
		t.Fatalf("unexpected call order: %s", got)
	}
	if len(answer.Steps) != 2 || answer.Steps[0].Type != StepReasoning || answer.Steps[1].Type != StepToolResult {
		t.Fatalf("unexpected steps: %+v", answer.Steps)
	}
	if answer.Steps[1].Title != "Buscando en la base de datos de anuncios 🔎" {
		t.Fatalf("unexpected tool title: %q", answer.Steps[1].Title)
	}
	if answer.ToolOutput != "- Piso reformado en Cádiz por 180.000 €.\n" {
		t.Fatalf("unexpected tool output: %q", answer.ToolOutput)
	}
	synthesis := rec.events[2].prompt
	for _, want := range []string{"'search_listings'", "Piso reformado en Cádiz", `"busco piso de 3 habitaciones en Cádiz"`} {
		if !strings.Contains(synthesis, want) {
			t.Fatalf("synthesis prompt missing %q:\n%s", want, synthesis)
		}
	}
	if answer.Final != "Tengo dos opciones para ti." {
		t.Fatalf("unexpected final: %q", answer.Final)
	}
}

func TestAnswerDirectWithFailingGatewayReturnsApology(t *testing.T) {
	rec := &recorder{
		replies: []string{`{"tool":"direct_answer","query":"hola"}`, ""},
		ok:      []bool{true, false},
	}
	runner := NewRunner(rec, router.New(rec), Tools{})
	answer, err := runner.Answer(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Final != Apology {
		t.Fatalf("expected apology, got %q", answer.Final)
	}
	if len(answer.Steps) != 1 {
		t.Fatalf("expected only the reasoning step, got %+v", answer.Steps)
	}
	if !strings.Contains(rec.events[1].prompt, "Pregunta: \"hola\"") {
		t.Fatalf("direct prompt missing question: %s", rec.events[1].prompt)
	}
}

func TestAnswerUnknownToolAnswersDirectly(t *testing.T) {
	rec := &recorder{
		replies: []string{`{"tool":"buscar_anuncios","query":"pisos"}`, "Respuesta"},
		ok:      []bool{true, true},
	}
	called := false
	tools := Tools{Listings: func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}}
	answer, err := NewRunner(rec, router.New(rec), tools).Answer(context.Background(), "pisos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("no tool should run for an unknown decision")
	}
	if !strings.Contains(answer.Steps[0].Content, "`buscar_anuncios`") {
		t.Fatalf("reasoning should name the raw tool: %q", answer.Steps[0].Content)
	}
	if answer.Final != "Respuesta" {
		t.Fatalf("unexpected final: %q", answer.Final)
	}
}

func TestAnswerRoutingFailure(t *testing.T) {
	rec := &recorder{replies: []string{"no json"}, ok: []bool{true}}
	_, err := NewRunner(rec, router.New(rec), Tools{}).Answer(context.Background(), "hola")
	var failure *router.RoutingFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected routing failure, got %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("routing failure must not trigger further calls, got %d", len(rec.events))
	}
}

func TestAnswerWebToolErrorTextIsSynthesized(t *testing.T) {
	rec := &recorder{
		replies: []string{`{"tool":"search_web","query":"COAC 2025"}`, "No he podido consultar internet."},
		ok:      []bool{true, true},
	}
	tools := Tools{Web: func(context.Context, string) (string, error) {
		return "Error: Tavily API devolvió un estado HTTP 401. Mensaje: invalid key", nil
	}}
	answer, err := NewRunner(rec, router.New(rec), tools).Answer(context.Background(), "¿Cuándo empieza el COAC 2025?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Steps[1].Title != "Buscando en internet en tiempo real 🌐" {
		t.Fatalf("unexpected title: %q", answer.Steps[1].Title)
	}
	if !strings.Contains(rec.events[1].prompt, "HTTP 401") {
		t.Fatalf("tool error text should reach synthesis")
	}
}

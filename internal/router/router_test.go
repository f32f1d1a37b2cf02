package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/Katral_realty/internal/llm"
)

type scriptedGenerator struct {
	text  string
	ok    bool
	err   error
	calls []llm.Request
}

func (s *scriptedGenerator) Generate(ctx context.Context, req llm.Request) (string, bool, error) {
	s.calls = append(s.calls, req)
	return s.text, s.ok, s.err
}

func TestRouteDecodesDecision(t *testing.T) {
	gen := &scriptedGenerator{text: `{"tool":"search_listings","query":"piso 3 habitaciones en Cádiz"}`, ok: true}
	decision, err := New(gen).Route(context.Background(), "busco piso de 3 habitaciones en Cádiz")
	require.NoError(t, err)
	assert.Equal(t, ToolSearchListings, decision.Tool)
	assert.Equal(t, "piso 3 habitaciones en Cádiz", decision.Query)

	require.Len(t, gen.calls, 1)
	req := gen.calls[0]
	require.NotNil(t, req.Schema)
	assert.Equal(t, []string{"tool", "query"}, req.Schema.Required)
	assert.Contains(t, req.Prompt, `Pregunta del usuario: "busco piso de 3 habitaciones en Cádiz"`)
	assert.Contains(t, req.Prompt, `{"tool": "search_listings", "query": "piso 3 habitaciones en Cádiz"}`)
}

func TestRoutePaddedToolIsNotMatched(t *testing.T) {
	gen := &scriptedGenerator{text: `{"tool":" search_listings ","query":"pisos en Cádiz"}`, ok: true}
	decision, err := New(gen).Route(context.Background(), "pisos en Cádiz")
	require.NoError(t, err)
	assert.Equal(t, ToolUnknown, decision.Tool)
	assert.Equal(t, " search_listings ", decision.Name)
}

func TestRouteUnknownToolIsKept(t *testing.T) {
	gen := &scriptedGenerator{text: `{"tool":"Search_Listings","query":"hola"}`, ok: true}
	decision, err := New(gen).Route(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, ToolUnknown, decision.Tool)
	assert.Equal(t, "Search_Listings", decision.Name)
}

func TestRouteFailures(t *testing.T) {
	cases := map[string]*scriptedGenerator{
		"unavailable":   {ok: false},
		"not json":      {text: "search_listings", ok: true},
		"missing query": {text: `{"tool":"search_web"}`, ok: true},
		"empty tool":    {text: `{"tool":"","query":"x"}`, ok: true},
		"malformed":     {text: `{"tool": search_web}`, ok: true},
		"array":         {text: `[{"tool":"search_web","query":"x"}]`, ok: true},
		"trailing text": {text: `{"tool":"search_web","query":"x"} trailing {"broken`, ok: true},
		"wrapped prose": {text: "Claro, aquí tienes: {\"tool\":\"search_web\",\"query\":\"x\"}", ok: true},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(gen).Route(context.Background(), "consulta")
			var failure *RoutingFailure
			require.True(t, errors.As(err, &failure), "got %v", err)
			assert.Equal(t, "El agente no pudo decidir una acción o el formato de decisión es incorrecto.", err.Error())
			assert.Len(t, gen.calls, 1)
		})
	}
}

func TestParseTool(t *testing.T) {
	assert.Equal(t, ToolDirectAnswer, ParseTool("direct_answer"))
	assert.Equal(t, ToolSearchDocuments, ParseTool("search_documents"))
	assert.Equal(t, ToolUnknown, ParseTool("buscar_anuncios"))
	assert.Equal(t, "unknown", ToolUnknown.String())
}

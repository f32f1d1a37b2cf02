package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRendersResults(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"url":"https://a.test","content":"Carnaval de Cádiz"},{"content":"sin fuente"}]}`))
	}))
	defer srv.Close()

	out, err := New("tvly-key", WithEndpoint(srv.URL)).Search(context.Background(), "COAC 2025")
	require.NoError(t, err)
	assert.Equal(t, "tvly-key", got.APIKey)
	assert.Equal(t, "basic", got.SearchDepth)
	assert.Equal(t, 3, got.MaxResults)
	assert.Equal(t, "COAC 2025", got.Query)
	assert.Equal(t, "Resultados de la búsqueda web:\n"+
		"- Fuente: https://a.test\n  Contenido: Carnaval de Cádiz\n\n"+
		"- Fuente: N/A\n  Contenido: sin fuente\n\n", out)
}

func TestSearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	out, err := New("k", WithEndpoint(srv.URL)).Search(context.Background(), "nada")
	require.NoError(t, err)
	assert.Equal(t, "No se encontraron resultados en la web para la consulta 'nada'.", out)
}

func TestSearchStatusErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"invalid key"}`, "invalid key"},
		{"detail string", `{"detail":"quota"}`, "quota"},
		{"detail object", `{"detail":{"error":"x"}}`, `{"error":"x"}`},
		{"garbage", `<html>`, "Respuesta inválida"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			out, err := New("k", WithEndpoint(srv.URL)).Search(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, "Error: Tavily API devolvió un estado HTTP 401. Mensaje: "+tc.want, out)
		})
	}
}

func TestSearchTimeoutIsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	out, err := New("k", WithEndpoint(srv.URL), WithTimeout(20*time.Millisecond)).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Contains(t, out, "Error al conectar con Tavily")
}

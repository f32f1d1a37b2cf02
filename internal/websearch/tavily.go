// File path: internal/websearch/tavily.go
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/common/telemetry"
	"github.com/nicodishanthj/Katral_realty/internal/config"
)

const (
	DefaultEndpoint   = "https://api.tavily.com/search"
	defaultMaxResults = 3
	defaultTimeout    = 15 * time.Second
	maxBodyBytes      = 1 << 20
)

// Client calls the Tavily search API and renders results as prose the model
// can read.
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = endpoint
		}
	}
}

func WithMaxResults(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		maxResults: defaultMaxResults,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// NewFromConfig builds a client from the search section of the config.
func NewFromConfig(cfg config.SearchConfig) *Client {
	return New(cfg.TavilyAPIKey,
		WithEndpoint(cfg.TavilyURL),
		WithMaxResults(cfg.MaxResults),
		WithTimeout(cfg.Timeout),
	)
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type searchResult struct {
	URL     *string `json:"url"`
	Content *string `json:"content"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type errorResponse struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// Search never fails: transport problems, bad statuses and empty result sets
// all come back as text for the synthesis prompt. Only a cancelled context
// is returned as an error.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	ctx, end := telemetry.StartSpan(ctx, "websearch.tavily")
	defer end()
	logger := common.Logger()

	payload, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  c.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("encode tavily request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", ctxErr
		}
		logger.Warn("websearch: tavily request failed", "error", err)
		return "Error al conectar con Tavily: " + err.Error(), nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("websearch: tavily body unreadable", "error", err)
		return "Error al conectar con Tavily: " + err.Error(), nil
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("websearch: tavily returned status", "status", resp.StatusCode)
		return fmt.Sprintf("Error: Tavily API devolvió un estado HTTP %d. Mensaje: %s", resp.StatusCode, errorMessage(body)), nil
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil || len(decoded.Results) == 0 {
		if err != nil {
			logger.Debug("websearch: tavily response undecodable", "error", err)
		}
		return fmt.Sprintf("No se encontraron resultados en la web para la consulta '%s'.", query), nil
	}

	var b strings.Builder
	b.WriteString("Resultados de la búsqueda web:\n")
	for _, result := range decoded.Results {
		fmt.Fprintf(&b, "- Fuente: %s\n", orNA(result.URL))
		fmt.Fprintf(&b, "  Contenido: %s\n\n", orNA(result.Content))
	}
	logger.Debug("websearch: tavily results rendered", "results", len(decoded.Results))
	return b.String(), nil
}

func errorMessage(body []byte) string {
	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "Respuesta inválida"
	}
	if decoded.Error != "" {
		return decoded.Error
	}
	detail := bytes.TrimSpace(decoded.Detail)
	if len(detail) == 0 || string(detail) == "null" {
		return "Respuesta inválida"
	}
	var text string
	if err := json.Unmarshal(detail, &text); err == nil {
		return text
	}
	return string(detail)
}

func orNA(value *string) string {
	if value == nil {
		return "N/A"
	}
	return *value
}

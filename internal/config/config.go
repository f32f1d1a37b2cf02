// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nicodishanthj/Katral_realty/internal/common"
)

// Config is built once at process start and handed to every constructor.
type Config struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`

	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Data      DataConfig      `yaml:"data"`
	Valuation ValuationConfig `yaml:"valuation"`
	Maps      MapsConfig      `yaml:"maps"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SearchConfig struct {
	TavilyAPIKey string        `yaml:"tavily_api_key"`
	TavilyURL    string        `yaml:"tavily_url"`
	MaxResults   int           `yaml:"max_results"`
	Timeout      time.Duration `yaml:"timeout"`
}

type DataConfig struct {
	ListingsPath  string  `yaml:"listings_path"`
	DocumentsPath string  `yaml:"documents_path"`
	ListingsDSN   string  `yaml:"listings_dsn"`
	ListingsTable string  `yaml:"listings_table"`
	Columns       Columns `yaml:"columns"`
}

// Columns names the dataset headers backing each logical listing field.
type Columns struct {
	Title           string `yaml:"title"`
	Location        string `yaml:"location"`
	Price           string `yaml:"price"`
	Characteristics string `yaml:"characteristics"`
	Link            string `yaml:"link"`
	Type            string `yaml:"type"`
	Date            string `yaml:"date"`
}

type ValuationConfig struct {
	Command string        `yaml:"command"`
	Script  string        `yaml:"script"`
	Timeout time.Duration `yaml:"timeout"`
}

// MapsConfig points the environment report at the Google Maps web services.
type MapsConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used before any file or environment overrides.
func Default() Config {
	return Config{
		Addr:     ":8081",
		LogLevel: "info",
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "openai/gpt-4o",
			Temperature: 0.5,
			MaxTokens:   2048,
			Timeout:     60 * time.Second,
		},
		Search: SearchConfig{
			TavilyURL:  "https://api.tavily.com/search",
			MaxResults: 3,
			Timeout:    15 * time.Second,
		},
		Data: DataConfig{
			ListingsPath:  "anuncios.csv",
			DocumentsPath: "conocimiento.txt",
			ListingsTable: "anuncios",
			Columns:       DefaultColumns(),
		},
		Valuation: ValuationConfig{
			Command: "python3",
			Script:  "scripts_python/predict_price.py",
			Timeout: 60 * time.Second,
		},
		Maps: MapsConfig{
			Timeout: 15 * time.Second,
		},
	}
}

// Endpoint returns the configured base URL or the provider's usual one.
// Anthropic falls back to the SDK default.
func (l LLMConfig) Endpoint() string {
	if base := strings.TrimSpace(l.BaseURL); base != "" {
		return base
	}
	switch strings.ToLower(strings.TrimSpace(l.Provider)) {
	case ProviderOllama:
		return "http://localhost:11434"
	case ProviderAnthropic, ProviderLocal:
		return ""
	default:
		return "https://openrouter.ai/api/v1"
	}
}

// DefaultColumns matches the headers of the scraped listings export.
func DefaultColumns() Columns {
	return Columns{
		Title:           "Título",
		Location:        "Ubicación",
		Price:           "Precio",
		Characteristics: "Características",
		Link:            "Enlace",
		Type:            "Tipo",
		Date:            "Fecha",
	}
}

// Load reads .env (if present), the optional YAML file and then the process
// environment. Later sources win. An empty path falls back to REALTY_CONFIG_FILE.
func Load(path string) (Config, error) {
	logger := common.Logger()
	if err := godotenv.Load(); err != nil {
		logger.Debug("config: .env file not loaded", "error", err)
	} else {
		logger.Info("config: environment loaded from .env")
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		if env, ok := lookup("REALTY_CONFIG_FILE"); ok {
			path = strings.TrimSpace(env)
		}
	}
	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays the non-zero values of override onto c.
func (c Config) Merge(override Config) Config {
	result := c
	setString(&result.Addr, override.Addr)
	setString(&result.LogLevel, override.LogLevel)

	setString(&result.LLM.Provider, override.LLM.Provider)
	setString(&result.LLM.APIKey, override.LLM.APIKey)
	setString(&result.LLM.BaseURL, override.LLM.BaseURL)
	setString(&result.LLM.Model, override.LLM.Model)
	if override.LLM.Temperature > 0 {
		result.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.MaxTokens > 0 {
		result.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Timeout > 0 {
		result.LLM.Timeout = override.LLM.Timeout
	}

	setString(&result.Search.TavilyAPIKey, override.Search.TavilyAPIKey)
	setString(&result.Search.TavilyURL, override.Search.TavilyURL)
	if override.Search.MaxResults > 0 {
		result.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.Timeout > 0 {
		result.Search.Timeout = override.Search.Timeout
	}

	setString(&result.Data.ListingsPath, override.Data.ListingsPath)
	setString(&result.Data.DocumentsPath, override.Data.DocumentsPath)
	setString(&result.Data.ListingsDSN, override.Data.ListingsDSN)
	setString(&result.Data.ListingsTable, override.Data.ListingsTable)
	result.Data.Columns = result.Data.Columns.Merge(override.Data.Columns)

	setString(&result.Valuation.Command, override.Valuation.Command)
	setString(&result.Valuation.Script, override.Valuation.Script)
	if override.Valuation.Timeout > 0 {
		result.Valuation.Timeout = override.Valuation.Timeout
	}

	setString(&result.Maps.APIKey, override.Maps.APIKey)
	setString(&result.Maps.BaseURL, override.Maps.BaseURL)
	if override.Maps.Timeout > 0 {
		result.Maps.Timeout = override.Maps.Timeout
	}
	return result
}

// Merge overlays the non-empty header names of override.
func (c Columns) Merge(override Columns) Columns {
	result := c
	setString(&result.Title, override.Title)
	setString(&result.Location, override.Location)
	setString(&result.Price, override.Price)
	setString(&result.Characteristics, override.Characteristics)
	setString(&result.Link, override.Link)
	setString(&result.Type, override.Type)
	setString(&result.Date, override.Date)
	return result
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"REALTY_ADDR":          &c.Addr,
		"LOG_LEVEL":            &c.LogLevel,
		"LLM_PROVIDER":         &c.LLM.Provider,
		"LLM_BASE_URL":         &c.LLM.BaseURL,
		"LLM_MODEL":            &c.LLM.Model,
		"TAVILY_API_KEY":       &c.Search.TavilyAPIKey,
		"TAVILY_URL":           &c.Search.TavilyURL,
		"LISTINGS_PATH":        &c.Data.ListingsPath,
		"DOCUMENTS_PATH":       &c.Data.DocumentsPath,
		"LISTINGS_DSN":         &c.Data.ListingsDSN,
		"LISTINGS_TABLE":       &c.Data.ListingsTable,
		"VALUATION_COMMAND":    &c.Valuation.Command,
		"VALUATION_SCRIPT":     &c.Valuation.Script,
		"GOOGLE_MAPS_API_KEY":  &c.Maps.APIKey,
		"GOOGLE_MAPS_BASE_URL": &c.Maps.BaseURL,

		"LISTINGS_COLUMN_TITLE":           &c.Data.Columns.Title,
		"LISTINGS_COLUMN_LOCATION":        &c.Data.Columns.Location,
		"LISTINGS_COLUMN_PRICE":           &c.Data.Columns.Price,
		"LISTINGS_COLUMN_CHARACTERISTICS": &c.Data.Columns.Characteristics,
		"LISTINGS_COLUMN_LINK":            &c.Data.Columns.Link,
		"LISTINGS_COLUMN_TYPE":            &c.Data.Columns.Type,
		"LISTINGS_COLUMN_DATE":            &c.Data.Columns.Date,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	// The provider key is looked up by the provider's conventional variable name.
	for _, key := range apiKeyVars(c.LLM.Provider) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			c.LLM.APIKey = strings.TrimSpace(value)
			break
		}
	}

	durations := map[string]*time.Duration{
		"LLM_TIMEOUT":       &c.LLM.Timeout,
		"SEARCH_TIMEOUT":    &c.Search.Timeout,
		"VALUATION_TIMEOUT": &c.Valuation.Timeout,
		"MAPS_TIMEOUT":      &c.Maps.Timeout,
	}
	for key, target := range durations {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		dur, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*target = dur
	}

	if value, ok := lookup("LLM_TEMPERATURE"); ok && strings.TrimSpace(value) != "" {
		temp, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = temp
	}
	if value, ok := lookup("LLM_MAX_TOKENS"); ok && strings.TrimSpace(value) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
		}
		c.LLM.MaxTokens = n
	}
	return nil
}

func apiKeyVars(provider string) []string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderAnthropic:
		return []string{"ANTHROPIC_API_KEY", "LLM_API_KEY"}
	case ProviderOllama, ProviderLocal:
		return []string{"LLM_API_KEY"}
	default:
		return []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "LLM_API_KEY"}
	}
}

func setString(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}

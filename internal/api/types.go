// File path: internal/api/types.go
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nicodishanthj/Katral_realty/internal/agent"
	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/comparables"
	"github.com/nicodishanthj/Katral_realty/internal/environment"
	"github.com/nicodishanthj/Katral_realty/internal/workflow"
)

const (
	msgMethodNotAllowed = "Método no permitido."
	msgInvalidRequest   = "Formato de petición inválido."
	msgInvalidInput     = "Datos de entrada inválidos."
	msgConfiguration    = "Error de configuración del servidor. Faltan claves API. Revisa tu archivo .env."
	msgInternal         = "Error interno del servidor."
	msgAIUnavailable    = "Error al comunicarse con el servicio de IA."
	msgAIInvalidJSON    = "La IA devolvió un formato JSON inválido."
	msgScriptMissing    = "Error interno del servidor: Script de predicción no encontrado."
	msgScriptFailed     = "Error al ejecutar el script de predicción."
	msgScriptStart      = "No se pudo iniciar el proceso del script de Python."
	msgScriptInvalid    = "Respuesta inválida del script de Python."
	msgAddressNotFound  = "No se pudo encontrar la dirección. Por favor, sé más específico o verifica la ortografía."
	msgMapsUnavailable  = "Error al comunicarse con el servicio de mapas."
	msgReportFailed     = "Error al generar el informe con IA."
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Debug   any    `json:"debug_info,omitempty"`
}

type chatRequest struct {
	Message *string `json:"message"`
}

type chatResponse struct {
	Success bool `json:"success"`
	agent.Answer
}

type analysisRequest struct {
	Type     flexString `json:"type"`
	Location flexString `json:"location"`
	Area     flexFloat  `json:"area"`
	Rooms    flexString `json:"rooms"`
	Baths    flexString `json:"baths"`
	State    flexString `json:"state"`
	Features flexString `json:"features"`
}

func (r analysisRequest) target() comparables.Target {
	return comparables.Target{
		Type:     strings.TrimSpace(string(r.Type)),
		Location: strings.TrimSpace(string(r.Location)),
		Area:     float64(r.Area),
		Rooms:    strings.TrimSpace(string(r.Rooms)),
		Baths:    strings.TrimSpace(string(r.Baths)),
		State:    strings.TrimSpace(string(r.State)),
		Features: strings.TrimSpace(string(r.Features)),
	}
}

type analysisResponse struct {
	Success bool            `json:"success"`
	Data    workflow.Report `json:"data"`
}

type socialRequest struct {
	Description *string  `json:"description"`
	Platforms   []string `json:"platforms"`
}

type socialResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

type valuationDebug struct {
	ExitCode     *int   `json:"exit_code,omitempty"`
	PythonStdout string `json:"python_stdout,omitempty"`
	PythonStderr string `json:"python_stderr,omitempty"`
}

type environmentRequest struct {
	Address *string    `json:"address"`
	Radius  *flexFloat `json:"radius"`
}

type environmentResponse struct {
	Success bool `json:"success"`
	environment.Report
}

type logsResponse struct {
	Entries []common.LogEntry `json:"entries"`
}

// flexString accepts form values sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts a number or a numeric string with either decimal mark.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var raw flexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", text)
	}
	*f = flexFloat(v)
	return nil
}

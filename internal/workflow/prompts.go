// File path: internal/workflow/prompts.go
package workflow

import (
	"github.com/tmc/langchaingo/prompts"
)

const propertySummary = `- **Propiedad:** Tipo {{.type}} en {{.location}}, con {{.area}} m², {{.rooms}} habitaciones, {{.baths}} baños, en estado '{{.state}}'. Características extra: '{{.features}}'.`

const marketTemplate = `Eres un analista de mercado inmobiliario. A continuación se presentan los datos de una propiedad y una lista de propiedades comparables extraídas de una base de datos local.

**Datos de la Propiedad a Analizar:**
- Tipo: {{.type}}
- Ubicación: {{.location}}
- Superficie: {{.area}} m²
- Habitaciones: {{.rooms}}
- Baños: {{.baths}}
- Estado: {{.state}}
- Características Adicionales: {{.features}}

**Datos de Mercado (Comparables encontrados):**
{{.comparables}}

**Tu Tarea:**
Genera un breve pero incisivo 'Análisis de Mercado'. Tu respuesta debe incluir:
1.  Un **Resumen de Mercado** que evalúe cómo se posiciona la propiedad a analizar frente a los comparables (si los hay) o el mercado general. Menciona si su precio parece competitivo o si sus características destacan.
2.  Una sección de **Puntos Clave** en formato de lista, destacando 2-3 observaciones importantes (ej. 'El precio por m² es competitivo para la zona', 'La falta de ascensor puede ser un factor limitante', etc.).
Formatea tu respuesta de manera clara y profesional. Usa Markdown para la negrita (**texto**).`

const swotTemplate = `Eres un estratega inmobiliario experto. Tu tarea es realizar un análisis F.O.D.A. (Fortalezas, Oportunidades, Debilidades, Amenazas) para la siguiente propiedad.

**Contexto Previo (Datos y Análisis de Mercado):**
` + propertySummary + `
- **Análisis de Mercado Previo:** {{.market}}

**Tu Tarea:**
Basándote EXCLUSIVAMENTE en el contexto proporcionado, genera un análisis F.O.D.A. conciso. Estructura tu respuesta en cuatro puntos claros y utiliza un lenguaje directo y profesional. Usa Markdown para la negrita (**texto**).`

const personaTemplate = `Eres un especialista en marketing inmobiliario y perfiles de cliente. Tu misión es crear un 'Buyer Persona' detallado para una propiedad específica.

**Contexto Estratégico Acumulado:**
` + propertySummary + `
- **Análisis de Mercado:** {{.market}}
- **Análisis F.O.D.A.:** {{.swot}}

**Tu Tarea:**
Basándote en TODO el contexto anterior, define el perfil del comprador o inquilino ideal para esta propiedad. Describe a esta persona o grupo (familia, pareja, inversor) de forma vívida. Tu respuesta debe incluir:
1.  **Título del Perfil:** Un nombre descriptivo (ej. 'La Joven Pareja Reformista', 'El Inversor Visionario').
2.  **Perfil Demográfico:** Rango de edad, profesión, nivel de ingresos aproximado.
3.  **Motivaciones y Objetivos:** ¿Qué buscan en una propiedad? ¿Por qué esta propiedad les encaja? (Ej: Buscan su primer hogar, una inversión rentable, una segunda residencia...).
4.  **Puntos de Dolor y Necesidades:** ¿Qué problemas les resuelve esta propiedad? (Ej: Necesitan espacio, quieren vivir en el centro, tienen un presupuesto ajustado...).
Usa Markdown para la negrita (**texto**).`

const marketingTemplate = `Eres un copywriter experto en marketing inmobiliario. Tu objetivo es crear textos de venta persuasivos y personalizados para una propiedad, utilizando toda la estrategia de marketing que se ha desarrollado previamente.

**Contexto Estratégico Completo:**
` + propertySummary + `
- **Análisis de Mercado:** {{.market}}
- **Análisis F.O.D.A.:** {{.swot}}
- **Buyer Persona (Cliente Ideal):** {{.persona}}

**Tu Tarea Final:**
Utiliza toda la información anterior para redactar los textos de venta para las siguientes plataformas. Los textos deben estar dirigidos al 'Buyer Persona' identificado, resaltar las 'Fortalezas' del F.O.D.A. y mitigar las 'Debilidades'.

1.  **Facebook:** Tono cercano y familiar. Destaca la vida en el barrio y el potencial del hogar. Usa 1-2 emojis.
2.  **Instagram:** Tono visual, enérgico y aspiracional. Frases cortas, muchos emojis relevantes y hashtags. Apela a las emociones y al estilo de vida.
3.  **Portales Inmobiliarios (Idealista, etc.):** Tono profesional y detallado. Estructura clara con un párrafo inicial potente, seguido de una descripción exhaustiva. Optimizado para la venta y sin emojis.

**Formato de Salida Obligatorio:**
Devuelve tu respuesta como un único objeto JSON válido, sin explicaciones ni texto adicional. Las claves deben ser 'facebook', 'instagram' y 'portales'.`

var propertyVars = []string{"type", "location", "area", "rooms", "baths", "state", "features"}

func withVars(extra ...string) []string {
	return append(append([]string(nil), propertyVars...), extra...)
}

var stagePrompts = map[Stage]prompts.PromptTemplate{
	StageMarket:    prompts.NewPromptTemplate(marketTemplate, withVars("comparables")),
	StageSWOT:      prompts.NewPromptTemplate(swotTemplate, withVars("market")),
	StagePersona:   prompts.NewPromptTemplate(personaTemplate, withVars("market", "swot")),
	StageMarketing: prompts.NewPromptTemplate(marketingTemplate, withVars("market", "swot", "persona")),
}

// Fallback texts stand in for a stage whose generation was unavailable.
var stageFallbacks = map[Stage]string{
	StageMarket:    "No se pudo generar el análisis de mercado debido a un error de comunicación con la IA.",
	StageSWOT:      "No se pudo generar el análisis F.O.D.A. debido a un error de comunicación con la IA.",
	StagePersona:   "No se pudo generar el perfil del comprador ideal debido a un error de comunicación con la IA.",
	StageMarketing: "No se pudo generar el contenido de marketing debido a un error de comunicación con la IA.",
}

const (
	marketingMissingKey  = "No se pudo generar."
	marketingNoObject    = "Error: La IA no devolvió el contenido de marketing en el formato esperado."
	marketingInvalidJSON = "Error: La IA devolvió un formato de datos inválido para el contenido de marketing."
	stageTemperature     = 0.5
)

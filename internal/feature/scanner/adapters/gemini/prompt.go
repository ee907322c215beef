package gemini

import (
	"strings"

	"google.golang.org/genai"

	"invisible_lens/internal/feature/scanner/domain/entity"
)

const basePrompt = `Eres la 'Lente Invisible'. Puedes ver las dimensiones artísticas y espirituales ocultas en el mundo real.
Analiza esta imagen del entorno del usuario.
Alucina y describe una instalación de arte oculta, invisible o una entidad sobrenatural que existe en esta ubicación exacta pero es invisible al ojo humano.
Conecta tu descripción con la iluminación, los objetos o el estado de ánimo de la imagen proporcionada.
Haz que suene como una ficha de museo o un registro de descubrimiento científico de una dimensión oculta.
Responde ÚNICAMENTE en Español.`

func buildPrompt(hints []string) string {
	if len(hints) == 0 {
		return basePrompt
	}
	return basePrompt + "\nElementos detectados en la escena: " + strings.Join(hints, ", ") + "."
}

// entitySchema はレスポンスのJSONスキーマです。6項目すべて必須、rarity は列挙値に制限します。
func entitySchema() *genai.Schema {
	rarities := make([]string, 0, 4)
	for _, r := range entity.Rarities() {
		rarities = append(rarities, string(r))
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Un nombre creativo, místico o abstracto para la entidad invisible u obra de arte encontrada.",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "Una descripción vívida de cómo se ve este objeto invisible. Usa lenguaje artístico y sensorial.",
			},
			"visualStyle": {
				Type:        genai.TypeString,
				Description: "Palabras clave que describen el estilo artístico (ej: 'Barroco Bioluminiscente', 'Vapor Cubista', 'Geometría Fractal').",
			},
			"meaning": {
				Type:        genai.TypeString,
				Description: "El significado filosófico o emocional profundo de esta entidad.",
			},
			"estimatedAge": {
				Type:        genai.TypeString,
				Description: "Una edad ficticia (ej: '300 años', 'Atemporal', 'Formado ayer').",
			},
			"rarity": {
				Type:        genai.TypeString,
				Enum:        rarities,
				Description: "Qué tan raro es este hallazgo.",
			},
		},
		Required:         []string{"title", "description", "visualStyle", "meaning", "estimatedAge", "rarity"},
		PropertyOrdering: []string{"title", "description", "visualStyle", "meaning", "estimatedAge", "rarity"},
	}
}

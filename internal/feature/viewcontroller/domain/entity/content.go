package entity

// Section は情報モーダルの1項目です。
type Section struct {
	Heading string
	Body    string
}

// Content は画面に表示する固定文言です。表示言語はスペイン語固定です。
type Content struct {
	Title        string
	Tagline      string
	Intro        string
	StartLabel   string
	AboutLabel   string
	AboutTitle   string
	AboutLead    string
	AboutEntries []Section
}

// DefaultContent はイントロ画面と情報モーダルの文言を返します。
func DefaultContent() Content {
	return Content{
		Title:      "Lente Invisible",
		Tagline:    "Augmented Reality Experiment",
		Intro:      "Apunta tu cámara a tu alrededor y descubre las obras de arte y entidades ocultas que habitan este lugar, invisibles al ojo humano.",
		StartLabel: "Iniciar escáner",
		AboutLabel: "¿Cómo funciona?",
		AboutTitle: "¿Cómo funciona?",
		AboutLead:  "Inspirado en la exhibición Seeing the Invisible de Google Arts & Culture, esta aplicación simula la experiencia de descubrir obras de arte digitales ocultas en espacios físicos.",
		AboutEntries: []Section{
			{
				Heading: "El Concepto Original",
				Body:    "Tradicionalmente, las exhibiciones de RA usan coordenadas GPS para colocar obras 3D específicas en lugares exactos. Tu teléfono actúa como una ventana para ver estos activos pre-colocados.",
			},
			{
				Heading: "Este Experimento de IA",
				Body:    "Sin activos pre-mapeados, esta app usa IA Generativa (Gemini 2.5). Analiza lo que ve tu cámara e imagina entidades invisibles basándose en el contexto visual de tu entorno.",
			},
			{
				Heading: "La Tecnología",
				Body:    "La cámara del navegador captura la escena y Gemini 2.5 Flash genera la historia, la descripción visual y el significado del arte invisible en tiempo real.",
			},
		},
	}
}

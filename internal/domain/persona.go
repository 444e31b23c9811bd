package domain

// Persona es un encuestado sintetico derivado de un arquetipo. Inmutable una vez generado.
type Persona struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	ArchetypeID   string `json:"archetype_id"`
	ArchetypeName string `json:"archetype_name"`
	Company       string `json:"company"`
	Background    string `json:"background"`
	Beliefs       string `json:"beliefs"`
	DecisionStyle string `json:"decision_style"`
}

// ParseOutcome indica que variante produjo un valor decodificado desde texto del LLM.
type ParseOutcome string

const (
	OutcomeParsed   ParseOutcome = "parsed"
	OutcomeFallback ParseOutcome = "fallback"
)

package domain

// Insights resume temas, recomendaciones y patrones por arquetipo de un run.
type Insights struct {
	Themes            []Theme                     `json:"themes"`
	Recommendations   []string                    `json:"recommendations"`
	Concerns          []Concern                   `json:"concerns"`
	ArchetypePatterns map[string]ArchetypePattern `json:"archetype_patterns"`
	Source            ParseOutcome                `json:"source,omitempty"`
}

type Theme struct {
	Theme    string   `json:"theme"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

type Concern struct {
	Concern   string `json:"concern"`
	Frequency int    `json:"frequency"`
}

type ArchetypePattern struct {
	AvgSentiment float64  `json:"avg_sentiment"`
	KeyThemes    []string `json:"key_themes"`
}

// EmptyInsights es la forma sin datos (ningun resultado exitoso).
func EmptyInsights() Insights {
	return Insights{
		Themes:            []Theme{},
		Recommendations:   []string{},
		Concerns:          []Concern{},
		ArchetypePatterns: map[string]ArchetypePattern{},
	}
}

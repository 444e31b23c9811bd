package domain

// TokenUsage cuenta tokens de entrada y salida de una llamada.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Add devuelve la suma sin mutar el receptor.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		Input:  u.Input + other.Input,
		Output: u.Output + other.Output,
	}
}

// ExecutionResult es la salida de una tarea por persona.
// Exactamente uno de Response o Error es no-nil.
type ExecutionResult struct {
	PersonaID      string     `json:"persona_id"`
	PersonaName    string     `json:"persona_name"`
	ArchetypeID    string     `json:"archetype_id"`
	ArchetypeName  string     `json:"archetype_name"`
	Response       *string    `json:"response"`
	Sentiment      float64    `json:"sentiment"`
	Tokens         TokenUsage `json:"tokens"`
	Model          string     `json:"model"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
	Error          *string    `json:"error"`
}

func (r ExecutionResult) Succeeded() bool {
	return r.Error == nil
}

// ResponseText devuelve la respuesta o "" si la tarea fallo.
func (r ExecutionResult) ResponseText() string {
	if r.Response == nil {
		return ""
	}
	return *r.Response
}

// ExperimentMetrics es el resumen agregado de un run. Se calcula una vez y no se persiste.
type ExperimentMetrics struct {
	TotalPersonas       int                `json:"total_personas"`
	SuccessfulResponses int                `json:"successful_responses"`
	FailedResponses     int                `json:"failed_responses"`
	AvgSentiment        float64            `json:"avg_sentiment"`
	ArchetypeSentiments map[string]float64 `json:"archetype_sentiments"`
	TotalTokens         TokenUsage         `json:"total_tokens"`
	ElapsedSeconds      float64            `json:"elapsed_seconds"`
}

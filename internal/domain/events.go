package domain

// EventType discrimina las lineas del stream NDJSON.
type EventType string

const (
	EventStatus             EventType = "status"
	EventPersonaGenerated   EventType = "persona_generated"
	EventResponseComplete   EventType = "response_complete"
	EventExperimentComplete EventType = "experiment_complete"
	EventError              EventType = "error"
)

// Event es cualquier evento del stream de progreso.
type Event interface {
	EventType() EventType
}

type StatusEvent struct {
	Type         EventType `json:"type"`
	Message      string    `json:"message"`
	ExperimentID string    `json:"experiment_id"`
}

func NewStatusEvent(experimentID, message string) StatusEvent {
	return StatusEvent{Type: EventStatus, Message: message, ExperimentID: experimentID}
}

func (StatusEvent) EventType() EventType { return EventStatus }

type PersonaGeneratedEvent struct {
	Type          EventType `json:"type"`
	ExperimentID  string    `json:"experiment_id"`
	PersonaID     string    `json:"persona_id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	ArchetypeID   string    `json:"archetype_id"`
	ArchetypeName string    `json:"archetype_name"`
}

func NewPersonaGeneratedEvent(experimentID string, p Persona) PersonaGeneratedEvent {
	return PersonaGeneratedEvent{
		Type:          EventPersonaGenerated,
		ExperimentID:  experimentID,
		PersonaID:     p.ID,
		Name:          p.Name,
		Role:          p.Role,
		ArchetypeID:   p.ArchetypeID,
		ArchetypeName: p.ArchetypeName,
	}
}

func (PersonaGeneratedEvent) EventType() EventType { return EventPersonaGenerated }

type ResponseCompleteEvent struct {
	Type          EventType  `json:"type"`
	ExperimentID  string     `json:"experiment_id"`
	PersonaID     string     `json:"persona_id"`
	PersonaName   string     `json:"persona_name"`
	ArchetypeID   string     `json:"archetype_id"`
	ArchetypeName string     `json:"archetype_name"`
	Response      *string    `json:"response"`
	Sentiment     float64    `json:"sentiment"`
	Tokens        TokenUsage `json:"tokens"`
	Error         *string    `json:"error"`
}

func NewResponseCompleteEvent(experimentID string, r ExecutionResult) ResponseCompleteEvent {
	return ResponseCompleteEvent{
		Type:          EventResponseComplete,
		ExperimentID:  experimentID,
		PersonaID:     r.PersonaID,
		PersonaName:   r.PersonaName,
		ArchetypeID:   r.ArchetypeID,
		ArchetypeName: r.ArchetypeName,
		Response:      r.Response,
		Sentiment:     r.Sentiment,
		Tokens:        r.Tokens,
		Error:         r.Error,
	}
}

func (ResponseCompleteEvent) EventType() EventType { return EventResponseComplete }

type ExperimentCompleteEvent struct {
	Type             EventType         `json:"type"`
	ExperimentID     string            `json:"experiment_id"`
	Results          []ExecutionResult `json:"results"`
	Metrics          ExperimentMetrics `json:"metrics"`
	PriceSensitivity PriceSensitivity  `json:"price_sensitivity"`
	Insights         *Insights         `json:"insights,omitempty"`
}

func NewExperimentCompleteEvent(
	experimentID string,
	results []ExecutionResult,
	metrics ExperimentMetrics,
	price PriceSensitivity,
	insights *Insights,
) ExperimentCompleteEvent {
	if results == nil {
		results = []ExecutionResult{}
	}
	return ExperimentCompleteEvent{
		Type:             EventExperimentComplete,
		ExperimentID:     experimentID,
		Results:          results,
		Metrics:          metrics,
		PriceSensitivity: price,
		Insights:         insights,
	}
}

func (ExperimentCompleteEvent) EventType() EventType { return EventExperimentComplete }

// ErrorEvent cierra el stream cuando el run se aborta antes del resumen.
type ErrorEvent struct {
	Type         EventType `json:"type"`
	ExperimentID string    `json:"experiment_id"`
	Message      string    `json:"message"`
}

func NewErrorEvent(experimentID, message string) ErrorEvent {
	return ErrorEvent{Type: EventError, ExperimentID: experimentID, Message: message}
}

func (ErrorEvent) EventType() EventType { return EventError }

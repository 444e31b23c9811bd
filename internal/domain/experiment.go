package domain

import (
	"errors"
	"time"
)

// ErrInvalidRequest marca requests de experimento mal formados; se rechazan antes de despachar nada.
var ErrInvalidRequest = errors.New("invalid experiment request")

// ExperimentRequest es el cuerpo de POST /experiments/run (y de los archivos del CLI).
type ExperimentRequest struct {
	ExperimentID string          `json:"experiment_id" yaml:"experiment_id"`
	Personas     PersonasConfig  `json:"personas" yaml:"personas"`
	Stimulus     StimulusConfig  `json:"stimulus" yaml:"stimulus"`
	Execution    ExecutionConfig `json:"execution" yaml:"execution"`
	Context      ContextConfig   `json:"context" yaml:"context"`
}

// PersonasConfig.Count es el total declarado por el cliente; es informativo y no reparte
// personas entre arquetipos.
type PersonasConfig struct {
	Archetypes     []ArchetypeSpec `json:"archetypes" yaml:"archetypes"`
	Count          int             `json:"count,omitempty" yaml:"count,omitempty"`
	GenerationType string          `json:"generationType,omitempty" yaml:"generationType,omitempty"`
}

// ArchetypeSpec es la forma cruda del arquetipo en el request; Count nil significa 1.
type ArchetypeSpec struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Count           *int     `json:"count,omitempty" yaml:"count,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	Characteristics []string `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
}

type StimulusConfig struct {
	Template string `json:"template" yaml:"template"`
}

// ExecutionConfig usa punteros para distinguir "no enviado" de cero.
type ExecutionConfig struct {
	Model       string   `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
	Timeout     *int     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ContextConfig se pasa tal cual al generador de personas.
type ContextConfig struct {
	Files any `json:"files,omitempty" yaml:"files,omitempty"`
}

// Archetype es la especificacion ya normalizada de una categoria de audiencia.
type Archetype struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Count           int      `json:"count"`
	Description     string   `json:"description,omitempty"`
	Characteristics []string `json:"characteristics"`
}

// ExecutionParams son los parametros compartidos (solo lectura) por todas las tareas de un run.
type ExecutionParams struct {
	Stimulus    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Experiment es un request validado, listo para ejecutarse.
type Experiment struct {
	ID           string
	Archetypes   []Archetype
	Params       ExecutionParams
	ContextFiles any
}

// TotalPersonas suma los counts de todos los arquetipos.
func (e Experiment) TotalPersonas() int {
	total := 0
	for _, a := range e.Archetypes {
		total += a.Count
	}
	return total
}

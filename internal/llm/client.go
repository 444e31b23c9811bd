package llm

import "context"

// LLMClient define la interfaz para generar respuestas con un LLM.
// Una sola instancia se comparte entre todas las tareas de un run; las implementaciones
// deben ser seguras para uso concurrente.
type LLMClient interface {
	Generate(ctx context.Context, req Request) (Completion, error)
}

// Request es una llamada de texto: prompt de sistema opcional mas un mensaje de usuario.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completion es el texto generado y el uso de tokens reportado por el backend.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

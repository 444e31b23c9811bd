package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Func no es nil tiene prioridad sobre Response/Err.
type MockClient struct {
	Response     string
	Err          error
	InputTokens  int
	OutputTokens int
	Func         func(ctx context.Context, req Request) (Completion, error)

	mu    sync.Mutex
	calls []Request
}

func (m *MockClient) Generate(ctx context.Context, req Request) (Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Func != nil {
		return m.Func(ctx, req)
	}
	if m.Err != nil {
		return Completion{}, m.Err
	}
	return Completion{
		Text:         m.Response,
		Model:        req.Model,
		InputTokens:  m.InputTokens,
		OutputTokens: m.OutputTokens,
	}, nil
}

// Calls devuelve una copia de las peticiones recibidas.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

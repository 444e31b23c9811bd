package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"synthetic-audience/internal/domain"
	"synthetic-audience/internal/llm"
	"synthetic-audience/internal/service"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"run", "token"} {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

const experimentYAML = `experiment_id: pricing-test
personas:
  archetypes:
    - id: cto
      name: CTO
      count: 2
      characteristics:
        - Pragmatic
stimulus:
  template: |
    We are launching a developer tool at $49/month.
execution:
  model: claude-haiku
  temperature: 0.4
  maxTokens: 300
  timeout: 30
context:
  files:
    - name: pricing.md
      content: Pro plan
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRequestYAML(t *testing.T) {
	req, err := loadRequest(writeFile(t, "exp.yaml", experimentYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ExperimentID != "pricing-test" || len(req.Personas.Archetypes) != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
	a := req.Personas.Archetypes[0]
	if a.Count == nil || *a.Count != 2 || len(a.Characteristics) != 1 {
		t.Fatalf("unexpected archetype: %+v", a)
	}
	if !strings.HasPrefix(req.Stimulus.Template, "We are launching") {
		t.Fatalf("unexpected stimulus %q", req.Stimulus.Template)
	}
	e := req.Execution
	if e.Model != "claude-haiku" || e.Temperature == nil || *e.Temperature != 0.4 || e.MaxTokens == nil || *e.MaxTokens != 300 || e.Timeout == nil || *e.Timeout != 30 {
		t.Fatalf("unexpected execution config: %+v", e)
	}
	if req.Context.Files == nil {
		t.Fatalf("expected context files")
	}
}

func TestLoadRequestJSON(t *testing.T) {
	body := `{"personas": {"archetypes": [{"id": "vc"}]}, "stimulus": {"template": "Hi"}, "execution": {"maxTokens": 0}}`
	req, err := loadRequest(writeFile(t, "exp.json", body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Personas.Archetypes[0].ID != "vc" || req.Execution.MaxTokens == nil || *req.Execution.MaxTokens != 0 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestLoadRequestErrors(t *testing.T) {
	if _, err := loadRequest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := loadRequest(writeFile(t, "bad.json", "{not json")); err == nil {
		t.Fatalf("expected parse error")
	}
}

type personaStub struct {
	err error
}

func (p personaStub) Generate(ctx context.Context, archetypes []domain.Archetype, contextFiles any) ([]domain.Persona, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []domain.Persona
	for _, a := range archetypes {
		for i := 0; i < a.Count; i++ {
			out = append(out, domain.Persona{ID: a.ID, Name: a.Name, Role: a.Name, ArchetypeID: a.ID, ArchetypeName: a.Name})
		}
	}
	return out, nil
}

func newRunner(gen service.PersonaGenerator) *service.ExperimentService {
	logger := zap.NewNop()
	client := &llm.MockClient{Response: "Solid value."}
	return service.NewExperimentService(gen, service.NewExecutor(client, 2, nil, logger), nil, nil, service.ExperimentSettings{}, nil, logger)
}

func TestStreamExperimentWritesNDJSON(t *testing.T) {
	req, err := loadRequest(writeFile(t, "exp.yaml", experimentYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var out bytes.Buffer
	if err := streamExperiment(context.Background(), &out, newRunner(personaStub{}), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 NDJSON lines, got %d:\n%s", len(lines), out.String())
	}
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("decode last line: %v", err)
	}
	if last["type"] != "experiment_complete" || last["experiment_id"] != "pricing-test" {
		t.Fatalf("unexpected terminal event: %v", last)
	}
}

func TestStreamExperimentFailsOnInvalidRequest(t *testing.T) {
	var out bytes.Buffer
	err := streamExperiment(context.Background(), &out, newRunner(personaStub{}), domain.ExperimentRequest{})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no events must be written for invalid requests")
	}
}

func TestStreamExperimentFailsOnErrorEvent(t *testing.T) {
	req, err := loadRequest(writeFile(t, "exp.yaml", experimentYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var out bytes.Buffer
	err = streamExperiment(context.Background(), &out, newRunner(personaStub{err: errors.New("quota")}), req)
	if err == nil || !strings.Contains(err.Error(), "persona generation aborted") {
		t.Fatalf("expected aborted run error, got %v", err)
	}
	if !strings.Contains(out.String(), `"type":"error"`) {
		t.Fatalf("expected error event in output:\n%s", out.String())
	}
}

package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a lightweight in-memory Generator useful for tests and
// examples. Responses are keyed by prompt; errors can be scripted to fire on
// specific attempts, e.g. to exercise retry behavior.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      []error
	calls     int
}

// NewMockGenerator constructs an empty MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockGenerator) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueError scripts errors returned by subsequent calls, in order, before
// any canned response is consulted.
func (m *MockGenerator) QueueError(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
}

// Calls reports how many Generate invocations have occurred.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewError(KindUnavailable, "context ended", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	if resp, ok := m.responses[req.Prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", req.Prompt), nil
}

// Provider implements Generator.
func (m *MockGenerator) Provider() string { return "mock" }

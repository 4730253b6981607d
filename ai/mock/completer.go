package mock

import (
	"context"
	"sync"

	"github.com/poiesic/docquery/ai"
)

// MockCompleter is a test double for ai.Completer.
// It records every fusion input it receives so tests can assert exactly
// what the second generation stage was given.
type MockCompleter struct {
	// GroundedAnswerFunc is called by GroundedAnswer if set.
	// If nil, returns a canned answer echoing the question.
	GroundedAnswerFunc func(ctx context.Context, question, contextText string) (string, error)

	// FuseContextsFunc is called by FuseContexts if set.
	// If nil, returns a canned fused answer.
	FuseContextsFunc func(ctx context.Context, input ai.FusionInput) (string, error)

	mu            sync.Mutex
	groundedCalls []groundedCall
	fusionCalls   []ai.FusionInput
}

type groundedCall struct {
	Question string
	Context  string
}

// NewMockCompleter creates a mock completer with canned default answers.
// Returns the concrete type so tests can inject behavior and inspect calls.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// GroundedAnswer records the call and produces an answer.
func (m *MockCompleter) GroundedAnswer(ctx context.Context, question, contextText string) (string, error) {
	m.mu.Lock()
	m.groundedCalls = append(m.groundedCalls, groundedCall{Question: question, Context: contextText})
	m.mu.Unlock()

	if m.GroundedAnswerFunc != nil {
		return m.GroundedAnswerFunc(ctx, question, contextText)
	}
	return "initial answer to: " + question, nil
}

// FuseContexts records the fusion input and produces a final answer.
func (m *MockCompleter) FuseContexts(ctx context.Context, input ai.FusionInput) (string, error) {
	m.mu.Lock()
	m.fusionCalls = append(m.fusionCalls, input)
	m.mu.Unlock()

	if m.FuseContextsFunc != nil {
		return m.FuseContextsFunc(ctx, input)
	}
	return "fused answer to: " + input.Question, nil
}

// CallCount returns the number of times any method was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groundedCalls) + len(m.fusionCalls)
}

// GroundedCallCount returns the number of GroundedAnswer calls.
func (m *MockCompleter) GroundedCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groundedCalls)
}

// LastGroundedContext returns the context passed to the most recent
// GroundedAnswer call, or "" if none was made.
func (m *MockCompleter) LastGroundedContext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.groundedCalls) == 0 {
		return ""
	}
	return m.groundedCalls[len(m.groundedCalls)-1].Context
}

// FusionCalls returns every recorded fusion input in call order.
func (m *MockCompleter) FusionCalls() []ai.FusionInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.FusionInput(nil), m.fusionCalls...)
}

// Reset clears recorded calls and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	m.groundedCalls = nil
	m.fusionCalls = nil
	m.mu.Unlock()
	m.GroundedAnswerFunc = nil
	m.FuseContextsFunc = nil
}

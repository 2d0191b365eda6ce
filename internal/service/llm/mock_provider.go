package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"brain2-conceptmap/internal/service/connections"
)

var conceptsLine = regexp.MustCompile(`(?m)^\[(.*)\]$`)

// MockProvider provides a deterministic provider for development and tests.
// It links each concept to the next one in the list.
type MockProvider struct {
	available bool
}

// NewMockProvider creates a new mock LLM provider
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// SetAvailable toggles availability.
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

// IsAvailable returns whether the mock provider is available
func (m *MockProvider) IsAvailable() bool {
	return m.available
}

// Complete answers a connection prompt with a chain over its concepts.
func (m *MockProvider) Complete(ctx context.Context, prompt string, _ CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	labels, err := promptLabels(prompt)
	if err != nil {
		return "", err
	}

	envelope := connectionEnvelope{}
	for i := 0; i+1 < len(labels); i++ {
		envelope.Connections = append(envelope.Connections, suggestion(labels[i], labels[i+1]))
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// promptLabels recovers the quoted concept list from a connection prompt.
func promptLabels(prompt string) ([]string, error) {
	match := conceptsLine.FindStringSubmatch(prompt)
	if match == nil {
		return nil, fmt.Errorf("unsupported prompt type")
	}

	var labels []string
	rest := match[1]
	for len(rest) > 0 {
		prefix, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return nil, fmt.Errorf("parse concept list: %w", err)
		}
		label, _ := strconv.Unquote(prefix)
		labels = append(labels, label)
		rest = rest[len(prefix):]
		if len(rest) >= 2 && rest[:2] == ", " {
			rest = rest[2:]
		}
	}
	return labels, nil
}

func suggestion(from, to string) connections.Suggestion {
	return connections.Suggestion{
		From:        from,
		To:          to,
		Explanation: from + " relates to " + to,
	}
}

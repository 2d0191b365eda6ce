package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "brain2-conceptmap/internal/errors"
	"brain2-conceptmap/internal/service/connections"
)

// maxLabels bounds the prompt for unusually large notes.
const maxLabels = 40

// Service turns concept labels into relationship suggestions.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

var _ connections.Suggester = (*Service)(nil)

// NewService creates a new LLM service with the specified provider. A zero
// timeout leaves the caller's deadline in charge.
func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger.Named("llm"),
	}
}

// IsAvailable returns true if the LLM service is available
func (s *Service) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

// Suggest implements connections.Suggester.
func (s *Service) Suggest(ctx context.Context, labels []string) ([]connections.Suggestion, error) {
	if !s.IsAvailable() {
		return nil, apperrors.NewUnavailable("LLM service is not available", nil)
	}
	if len(labels) < 2 {
		return []connections.Suggestion{}, nil
	}
	if len(labels) > maxLabels {
		labels = labels[:maxLabels]
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.provider.Complete(ctx, buildConnectionPrompt(labels), CompletionOptions{
		Temperature: 0.3,
		MaxTokens:   800,
		Format:      "json",
	})
	if err != nil {
		return nil, apperrors.NewExternal("failed to get LLM response", err)
	}

	raw, err := parseConnectionResponse(response)
	if err != nil {
		s.logger.Debug("Unparseable LLM response", zap.String("response", truncate(response, 500)))
		return nil, apperrors.NewExternal("failed to parse LLM response", err).
			WithCode(apperrors.CodeLLMResponseInvalid)
	}

	suggestions := filterSuggestions(raw, labels)
	if dropped := len(raw) - len(suggestions); dropped > 0 {
		s.logger.Debug("Dropped invalid suggestions", zap.Int("dropped", dropped), zap.Int("kept", len(suggestions)))
	}
	return suggestions, nil
}

// buildConnectionPrompt creates a prompt asking for relationships among labels
func buildConnectionPrompt(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}

	return fmt.Sprintf(`You are helping a student understand how the ideas in one of their notes relate.

Concepts:
[%s]

Return a JSON object with this structure:
{"connections": [
  {"from": "Concept A", "to": "Concept B", "explanation": "one short sentence"}
]}

Rules:
1. Use the concept names exactly as given
2. Only connect concepts that have a meaningful relationship
3. Never connect a concept to itself
4. Keep explanations under 20 words
`, strings.Join(quoted, ", "))
}

type connectionEnvelope struct {
	Connections []connections.Suggestion `json:"connections"`
}

// parseConnectionResponse accepts a bare array or an object with a
// "connections" array, optionally inside a markdown code fence.
func parseConnectionResponse(response string) ([]connections.Suggestion, error) {
	response = stripCodeFence(response)

	if strings.HasPrefix(response, "[") {
		var suggestions []connections.Suggestion
		if err := json.Unmarshal([]byte(response), &suggestions); err != nil {
			return nil, err
		}
		return suggestions, nil
	}

	var envelope connectionEnvelope
	if err := json.Unmarshal([]byte(response), &envelope); err != nil {
		return nil, err
	}
	return envelope.Connections, nil
}

func stripCodeFence(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}
	return response
}

// filterSuggestions keeps suggestions whose endpoints are distinct known
// labels, restoring the label's original spelling, and drops duplicates.
func filterSuggestions(raw []connections.Suggestion, labels []string) []connections.Suggestion {
	canonical := make(map[string]string, len(labels))
	for _, l := range labels {
		key := strings.ToLower(strings.TrimSpace(l))
		if _, ok := canonical[key]; !ok {
			canonical[key] = l
		}
	}

	type pair struct{ from, to string }
	seen := make(map[pair]struct{}, len(raw))
	out := make([]connections.Suggestion, 0, len(raw))
	for _, s := range raw {
		from, okFrom := canonical[strings.ToLower(strings.TrimSpace(s.From))]
		to, okTo := canonical[strings.ToLower(strings.TrimSpace(s.To))]
		if !okFrom || !okTo || from == to {
			continue
		}
		p := pair{from, to}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, connections.Suggestion{
			From:        from,
			To:          to,
			Explanation: strings.TrimSpace(s.Explanation),
		})
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Package connections loads relationship edges between the concepts of each
// note. A sweep asks the suggester about one group at a time and folds the
// answers into a single edge list; a group that fails contributes nothing.
package connections

import "context"

// Suggestion is one relationship proposed between two concept labels.
type Suggestion struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Explanation string `json:"explanation"`
}

// Suggester proposes relationships among the concept labels of one note.
type Suggester interface {
	Suggest(ctx context.Context, labels []string) ([]Suggestion, error)
}

// SuggesterFunc adapts a function to the Suggester interface.
type SuggesterFunc func(ctx context.Context, labels []string) ([]Suggestion, error)

// Suggest implements Suggester.
func (f SuggesterFunc) Suggest(ctx context.Context, labels []string) ([]Suggestion, error) {
	return f(ctx, labels)
}

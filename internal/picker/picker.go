// Package picker implements the interactive selection flow: open a chooser over a
// candidate source, wait for the user to pick one entry or dismiss it, and resolve the
// choice to a domain object.
package picker

import "context"

// Candidate is one selectable entry.
type Candidate[T any] struct {
	Label  string
	Detail string
	Value  T
}

// Source provides candidates. Searchable prompts call it again whenever the query changes;
// other prompts call it once with an empty query.
type Source[T any] func(ctx context.Context, query string) ([]Candidate[T], error)

// Prompt describes the chooser shown to the user.
type Prompt struct {
	Title       string
	Description string
	Placeholder string
	Searchable  bool
}

// Chooser is the host's chooser primitive. It blocks until the user picks an entry
// (ok is true) or dismisses the chooser (ok is false, err is nil).
type Chooser[T any] interface {
	Choose(ctx context.Context, prompt Prompt, source Source[T]) (value T, ok bool, err error)
}

// Pick runs chooser and returns the chosen value, or nil when the user cancelled.
// Cancellation is never an error.
func Pick[T any](ctx context.Context, chooser Chooser[T], prompt Prompt, source Source[T]) (*T, error) {
	value, ok, err := chooser.Choose(ctx, prompt, source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &value, nil
}

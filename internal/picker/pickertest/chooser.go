// Package pickertest provides a scripted picker.Chooser for tests.
package pickertest

import (
	"context"

	"github.com/tuannvm/jira-cloud/internal/picker"
)

// Chooser loads candidates for Query and returns the one at Index, or reports a
// cancellation when Index is out of range.
type Chooser[T any] struct {
	Query string
	Index int
	Err   error

	Calls   int
	Prompts []picker.Prompt
}

var _ picker.Chooser[int] = (*Chooser[int])(nil)

// Choose loads candidates from source the way a real chooser would.
func (f *Chooser[T]) Choose(ctx context.Context, prompt picker.Prompt, source picker.Source[T]) (T, bool, error) {
	f.Calls++
	f.Prompts = append(f.Prompts, prompt)

	var zero T
	if f.Err != nil {
		return zero, false, f.Err
	}
	candidates, err := source(ctx, f.Query)
	if err != nil {
		return zero, false, err
	}
	if f.Index < 0 || f.Index >= len(candidates) {
		return zero, false, nil
	}
	return candidates[f.Index].Value, true, nil
}

// Cancel returns a chooser that behaves like a user dismissing it.
func Cancel[T any]() *Chooser[T] {
	return &Chooser[T]{Index: -1}
}

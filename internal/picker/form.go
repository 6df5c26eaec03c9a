package picker

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	log "github.com/tuannvm/jira-cloud/internal/logging"
)

// FormConfig configures the terminal chooser.
type FormConfig struct {
	Input      io.Reader
	Output     io.Writer
	AltScreen  bool
	Accessible bool
}

// cancelOption is the select value that resolves to no candidate.
const cancelOption = -1

// FormChooser is a terminal Chooser built on huh forms. Esc or Ctrl+C dismisses it; in
// accessible mode the Cancel option, an empty answer or end of input does.
type FormChooser[T any] struct {
	cfg FormConfig
}

// NewFormChooser creates a FormChooser.
func NewFormChooser[T any](cfg FormConfig) *FormChooser[T] {
	return &FormChooser[T]{cfg: cfg}
}

// Choose implements Chooser.
func (c *FormChooser[T]) Choose(ctx context.Context, prompt Prompt, source Source[T]) (T, bool, error) {
	if prompt.Searchable && !c.cfg.Accessible {
		return c.chooseSearch(ctx, prompt, source)
	}

	var zero T
	query := ""
	title, description := prompt.Title, prompt.Description
	if prompt.Searchable {
		// Accessible forms never reload options, so the query is asked for up front.
		input := huh.NewInput().
			Title(prompt.Title).
			Description(prompt.Description).
			Placeholder(prompt.Placeholder).
			Value(&query)
		if ok, err := c.run(ctx, huh.NewForm(huh.NewGroup(input))); !ok {
			return zero, false, err
		}
		title, description = "Matches", ""
	}

	candidates, err := source(ctx, query)
	if err != nil {
		return zero, false, err
	}

	opts := candidateOptions(candidates)
	if c.cfg.Accessible {
		opts = append(opts, huh.NewOption("Cancel", cancelOption))
	}
	selected := cancelOption
	sel := huh.NewSelect[int]().
		Title(title).
		Description(description).
		Options(opts...).
		Filtering(true).
		Value(&selected)

	if ok, err := c.run(ctx, huh.NewForm(huh.NewGroup(sel))); !ok {
		return zero, false, err
	}
	return resolve(candidates, selected)
}

// chooseSearch binds a query input to the option list so suggestions follow what the
// user types.
func (c *FormChooser[T]) chooseSearch(ctx context.Context, prompt Prompt, source Source[T]) (T, bool, error) {
	var zero T
	results := newSearchResults(source)

	query := ""
	selected := cancelOption
	input := huh.NewInput().
		Title(prompt.Title).
		Description(prompt.Description).
		Placeholder(prompt.Placeholder).
		Value(&query)
	sel := huh.NewSelect[int]().
		Title("Matches").
		OptionsFunc(func() []huh.Option[int] {
			return candidateOptions(results.fetch(ctx, query))
		}, &query).
		Value(&selected)

	if ok, err := c.run(ctx, huh.NewForm(huh.NewGroup(input, sel))); !ok {
		return zero, false, err
	}

	candidates, lastErr := results.get(query)
	value, ok, err := resolve(candidates, selected)
	if !ok && lastErr != nil {
		return zero, false, lastErr
	}
	return value, ok, err
}

// run shows form and reports whether it was submitted.
func (c *FormChooser[T]) run(ctx context.Context, form *huh.Form) (bool, error) {
	form = form.WithTheme(huh.ThemeCharm()).WithAccessible(c.cfg.Accessible)
	if c.cfg.Accessible {
		in := c.cfg.Input
		if in == nil {
			in = os.Stdin
		}
		form = form.WithInput(lineReader{r: in})
	} else if c.cfg.Input != nil {
		form = form.WithInput(c.cfg.Input)
	}
	if c.cfg.Output != nil {
		form = form.WithOutput(c.cfg.Output)
	}
	if c.cfg.AltScreen {
		form = form.WithProgramOptions(tea.WithAltScreen())
	}
	return submitted(form.RunWithContext(ctx))
}

// submitted maps the result of running a form. A dismissed form is not an error.
func submitted(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, huh.ErrUserAborted):
		return false, nil
	default:
		return false, err
	}
}

// lineReader hands out at most one line per Read. huh scans every accessible prompt
// with a fresh bufio.Scanner, which would otherwise swallow the answers to later
// prompts when input is piped.
type lineReader struct {
	r io.Reader
}

func (l lineReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := l.r.Read(p[n : n+1])
		n += m
		if err != nil {
			return n, err
		}
		if m == 1 && p[n-1] == '\n' {
			break
		}
	}
	return n, nil
}

// searchResults remembers the candidates of every query so the final selection index
// is resolved against the list the user was looking at.
type searchResults[T any] struct {
	source Source[T]

	mu      sync.Mutex
	byQuery map[string][]Candidate[T]
	lastErr error
}

func newSearchResults[T any](source Source[T]) *searchResults[T] {
	return &searchResults[T]{source: source, byQuery: make(map[string][]Candidate[T])}
}

func (r *searchResults[T]) fetch(ctx context.Context, query string) []Candidate[T] {
	candidates, err := r.source(ctx, query)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Warnf("Fetching suggestions for %q failed: %v", query, err)
		r.lastErr = err
		return nil
	}
	r.lastErr = nil
	r.byQuery[query] = candidates
	return candidates
}

func (r *searchResults[T]) get(query string) ([]Candidate[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byQuery[query], r.lastErr
}

func candidateOptions[T any](candidates []Candidate[T]) []huh.Option[int] {
	opts := make([]huh.Option[int], 0, len(candidates))
	for i, c := range candidates {
		label := c.Label
		if c.Detail != "" {
			label += "  " + c.Detail
		}
		opts = append(opts, huh.NewOption(label, i))
	}
	return opts
}

func resolve[T any](candidates []Candidate[T], selected int) (T, bool, error) {
	var zero T
	if selected < 0 || selected >= len(candidates) {
		return zero, false, nil
	}
	return candidates[selected].Value, true, nil
}

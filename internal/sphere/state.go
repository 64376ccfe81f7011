package sphere

import (
	"fmt"
	"net/url"

	"github.com/lox/vibesphere/internal/catalog"
)

// Chip is the compact display of one selected item.
type Chip struct {
	ID    string `json:"id"`
	Glyph string `json:"glyph"`
	Name  string `json:"name"`
}

// Sphere is the result of a build: the gradient, the description, and the
// chips of the selection it was built from.
type Sphere struct {
	IDs         []string    `json:"ids"`
	Gradient    Gradient    `json:"gradient"`
	Description Description `json:"description"`
	Chips       []Chip      `json:"chips"`
}

// State owns one session's selection together with the catalog index and
// random source the builders use.
type State struct {
	index     *catalog.Index
	selection *Selection
	rand      Source
}

// NewState returns a state whose selection starts with ids.
func NewState(index *catalog.Index, src Source, ids ...string) *State {
	return &State{
		index:     index,
		selection: NewSelection(index, ids...),
		rand:      src,
	}
}

// Selection returns the live selection.
func (s *State) Selection() *Selection { return s.selection }

// Index returns the catalog index.
func (s *State) Index() *catalog.Index { return s.index }

// Build renders the current selection.
func (s *State) Build() Sphere {
	ids := s.selection.IDs()
	entries := s.selection.Entries()

	sp := Sphere{
		IDs:         ids,
		Gradient:    BuildGradient(s.index, ids, s.rand),
		Description: Describe(entries, s.rand),
		Chips:       make([]Chip, 0, len(entries)),
	}
	for _, e := range entries {
		sp.Chips = append(sp.Chips, Chip{ID: e.ID, Glyph: e.Glyph, Name: e.Name})
	}
	return sp
}

// Command is a user action applied to a State.
type Command interface {
	apply(s *State) (Result, error)
}

// Result carries whatever a command produced.
type Result struct {
	Toggle ToggleResult
	Sphere *Sphere
	Link   string
}

// ToggleItem adds or removes one item.
type ToggleItem struct{ ID string }

// Clear empties the selection and rebuilds the idle sphere.
type Clear struct{}

// Build renders the selection.
type Build struct{}

// Share produces a link to Base carrying the selection.
type Share struct{ Base *url.URL }

// Apply runs cmd against the state.
func (s *State) Apply(cmd Command) (Result, error) {
	return cmd.apply(s)
}

func (c ToggleItem) apply(s *State) (Result, error) {
	r, err := s.selection.Toggle(c.ID)
	return Result{Toggle: r}, err
}

func (Clear) apply(s *State) (Result, error) {
	s.selection.Clear()
	sp := s.Build()
	return Result{Sphere: &sp}, nil
}

func (Build) apply(s *State) (Result, error) {
	sp := s.Build()
	return Result{Sphere: &sp}, nil
}

func (c Share) apply(s *State) (Result, error) {
	if c.Base == nil {
		return Result{}, fmt.Errorf("share: base url is required")
	}
	return Result{Link: ShareURL(c.Base, s.selection)}, nil
}

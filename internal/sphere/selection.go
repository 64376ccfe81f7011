package sphere

import (
	"errors"

	"github.com/lox/vibesphere/internal/catalog"
)

// MaxSelection is the most items a selection may hold.
const MaxSelection = 12

// ErrCapacityExceeded is returned when adding to a full selection.
var ErrCapacityExceeded = errors.New("selection is full")

// ToggleResult reports what a toggle did.
type ToggleResult int

const (
	ToggleIgnored ToggleResult = iota // unknown id
	ToggleAdded
	ToggleRemoved
	ToggleRejected // selection full
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleAdded:
		return "added"
	case ToggleRemoved:
		return "removed"
	case ToggleRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// Selection is a bounded, insertion-ordered set of catalog item ids.
type Selection struct {
	index *catalog.Index
	ids   []string
	set   map[string]struct{}
}

// NewSelection returns a selection pre-populated with ids. Unknown and
// duplicate ids are skipped, and ids beyond MaxSelection are dropped.
func NewSelection(index *catalog.Index, ids ...string) *Selection {
	s := &Selection{index: index, set: make(map[string]struct{})}
	for _, id := range ids {
		if len(s.ids) == MaxSelection {
			break
		}
		if s.Contains(id) {
			continue
		}
		s.Toggle(id)
	}
	return s
}

// Toggle removes id if selected, otherwise adds it. Unknown ids are ignored.
// Adding to a full selection leaves it unchanged and returns ErrCapacityExceeded.
func (s *Selection) Toggle(id string) (ToggleResult, error) {
	if !s.index.Has(id) {
		return ToggleIgnored, nil
	}
	if _, ok := s.set[id]; ok {
		delete(s.set, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return ToggleRemoved, nil
	}
	if len(s.ids) >= MaxSelection {
		return ToggleRejected, ErrCapacityExceeded
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
	return ToggleAdded, nil
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
	s.set = make(map[string]struct{})
}

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Contains(id string) bool {
	_, ok := s.set[id]
	return ok
}

// IDs returns the selected ids in insertion order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Entries resolves the selection against the catalog, in insertion order.
func (s *Selection) Entries() []catalog.Entry {
	return resolve(s.index, s.ids)
}

func resolve(index *catalog.Index, ids []string) []catalog.Entry {
	entries := make([]catalog.Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := index.Lookup(id); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

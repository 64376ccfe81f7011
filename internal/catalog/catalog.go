package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed default.json
var defaultJSON []byte

// Item is a single selectable element of the catalog.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Glyph       string `json:"emoji"`
	Color       string `json:"color"`
	Description string `json:"desc"`
}

// Category groups items under a display title.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Catalog is the full, read-only set of categories.
type Catalog struct {
	Categories []Category `json:"categories"`
}

// Entry is an item resolved together with the title of its owning category.
type Entry struct {
	Item
	Category string
}

// Index maps item ids to their entries. It is built once and never mutated.
type Index struct {
	entries map[string]Entry
	order   []string
}

var errInvalid = errors.New("invalid catalog")

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Validate checks that ids are present, unpadded and globally unique and
// that every colour is a hex colour.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", errInvalid)
	}
	seen := make(map[string]string)
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat.ID) == "" {
			return fmt.Errorf("%w: category %q has no id", errInvalid, cat.Title)
		}
		for _, it := range cat.Items {
			if strings.TrimSpace(it.ID) == "" {
				return fmt.Errorf("%w: item %q in %s has no id", errInvalid, it.Name, cat.ID)
			}
			if strings.Contains(it.ID, ",") {
				return fmt.Errorf("%w: item id %q contains a comma", errInvalid, it.ID)
			}
			// Selection links trim every token, so padded ids could never be decoded.
			if strings.TrimSpace(it.ID) != it.ID {
				return fmt.Errorf("%w: item id %q has surrounding whitespace", errInvalid, it.ID)
			}
			if owner, ok := seen[it.ID]; ok {
				return fmt.Errorf("%w: duplicate item id %q (in %s and %s)", errInvalid, it.ID, owner, cat.ID)
			}
			if _, err := colorful.Hex(it.Color); err != nil {
				return fmt.Errorf("%w: item %q color %q: %v", errInvalid, it.ID, it.Color, err)
			}
			seen[it.ID] = cat.ID
		}
	}
	return nil
}

// Index builds the id lookup for the catalog.
func (c *Catalog) Index() *Index {
	return NewIndex(c)
}

// NewIndex builds an Index from c. Items are registered in catalog order.
func NewIndex(c *Catalog) *Index {
	idx := &Index{entries: make(map[string]Entry)}
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			idx.entries[it.ID] = Entry{Item: it, Category: cat.Title}
			idx.order = append(idx.order, it.ID)
		}
	}
	return idx
}

// Lookup returns the entry for id.
func (idx *Index) Lookup(id string) (Entry, bool) {
	e, ok := idx.entries[id]
	return e, ok
}

// Has reports whether id is a catalog item.
func (idx *Index) Has(id string) bool {
	_, ok := idx.entries[id]
	return ok
}

// Len returns the number of items in the index.
func (idx *Index) Len() int {
	return len(idx.order)
}

// IDs returns every item id in catalog order.
func (idx *Index) IDs() []string {
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

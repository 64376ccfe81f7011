package api

import (
	"github.com/lox/vibesphere/internal/catalog"
	"github.com/lox/vibesphere/internal/sphere"
)

// PageData contains everything the index template renders.
type PageData struct {
	Categories  []CategoryView
	Sphere      sphere.Sphere
	GradientCSS string
	Description []string
	Selected    string // encoded selection for hidden form fields
	Count       int
	Max         int
	Notice      string
	ToastMillis int64
	ShareURL    string
	OGImageURL  string
}

// CategoryView is a catalog category with per-item selection state.
type CategoryView struct {
	ID    string
	Title string
	Items []ItemView
}

type ItemView struct {
	catalog.Item
	Selected bool
}

// ErrorData backs the catalog failure page.
type ErrorData struct {
	Message string
}

// SphereResponse is the JSON form of a built sphere.
type SphereResponse struct {
	sphere.Sphere
	CSS   string `json:"css"`
	Text  string `json:"text"`
	Share string `json:"share"`
}

// HealthStatus is returned by /health.
type HealthStatus struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
}

func categoryViews(c *catalog.Catalog, sel *sphere.Selection) []CategoryView {
	views := make([]CategoryView, 0, len(c.Categories))
	for _, cat := range c.Categories {
		v := CategoryView{ID: cat.ID, Title: cat.Title, Items: make([]ItemView, 0, len(cat.Items))}
		for _, it := range cat.Items {
			v.Items = append(v.Items, ItemView{Item: it, Selected: sel.Contains(it.ID)})
		}
		views = append(views, v)
	}
	return views
}

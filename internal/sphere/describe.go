package sphere

import (
	"strings"

	"github.com/lox/vibesphere/internal/catalog"
)

// EmptyPrompt is shown instead of a description when nothing is selected.
const EmptyPrompt = "Пока пусто. Выбери элементы слева и нажми «Собрать сферу»."

// VibeWords is the flavour vocabulary for the vibe line.
var VibeWords = []string{
	"мягко", "искрит", "звенит", "медитативно", "дерзко", "кибер",
	"тепло", "воздушно", "глитчит", "шуршит", "кислотно",
}

const maxNotes = 3

// CategoryLine lists the selected items of one category.
type CategoryLine struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

func (l CategoryLine) String() string {
	return l.Title + ": " + strings.Join(l.Items, ", ")
}

// Description is the text summary of a selection.
type Description struct {
	Empty      bool           `json:"empty"`
	Categories []CategoryLine `json:"categories,omitempty"`
	Vibe       [2]string      `json:"vibe"`
	Notes      []string       `json:"notes,omitempty"`
}

// Describe summarises entries: category lines in first-encounter order, a
// vibe line of two random words, then up to three item descriptions.
func Describe(entries []catalog.Entry, src Source) Description {
	if len(entries) == 0 {
		return Description{Empty: true}
	}

	var d Description
	pos := make(map[string]int)
	for _, e := range entries {
		i, ok := pos[e.Category]
		if !ok {
			i = len(d.Categories)
			pos[e.Category] = i
			d.Categories = append(d.Categories, CategoryLine{Title: e.Category})
		}
		d.Categories[i].Items = append(d.Categories[i].Items, e.Glyph+" "+e.Name)
	}

	d.Vibe[0] = VibeWords[src.Intn(len(VibeWords))]
	d.Vibe[1] = VibeWords[src.Intn(len(VibeWords))]

	for _, e := range entries {
		if len(d.Notes) == maxNotes {
			break
		}
		if e.Description != "" {
			d.Notes = append(d.Notes, e.Description)
		}
	}
	return d
}

// Lines returns the description as display lines. A blank line separates
// the notes from the summary.
func (d Description) Lines() []string {
	if d.Empty {
		return []string{EmptyPrompt}
	}
	lines := make([]string, 0, len(d.Categories)+len(d.Notes)+2)
	for _, c := range d.Categories {
		lines = append(lines, c.String())
	}
	lines = append(lines, "Вайб: "+d.Vibe[0]+", "+d.Vibe[1]+".")
	if len(d.Notes) > 0 {
		lines = append(lines, "")
		lines = append(lines, d.Notes...)
	}
	return lines
}

func (d Description) String() string {
	return strings.Join(d.Lines(), "\n")
}

package sphere

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestState_PreselectedFromURL(t *testing.T) {
	t.Parallel()
	idx := testIndex()
	u, _ := url.Parse("https://vibe.example/?s=cosmos,ocean,city")

	ids, dropped := DecodeIDs(idx, u.Query().Get(QueryParam))
	if dropped != 0 {
		t.Fatalf("dropped = %d", dropped)
	}
	st := NewState(idx, NewSource(11), ids...)

	res, err := st.Apply(Build{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sp := res.Sphere
	if len(sp.Gradient.Stops) != 3 {
		t.Fatalf("%d stops, want 3", len(sp.Gradient.Stops))
	}

	lines := sp.Description.Lines()
	if lines[0] != "Основа: 🪐 Космос, 🌊 Океан, 🌆 Город" {
		t.Errorf("category line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Вайб: ") {
		t.Errorf("vibe line = %q", lines[1])
	}
	if lines[2] != "" || len(lines) != 6 {
		t.Errorf("expected blank separator and three notes, got %q", lines)
	}
	if len(sp.Chips) != 3 || sp.Chips[1].Glyph != "🌊" {
		t.Errorf("chips = %+v", sp.Chips)
	}
}

func TestState_Commands(t *testing.T) {
	t.Parallel()
	idx := testIndex()
	st := NewState(idx, NewSource(1))

	res, err := st.Apply(ToggleItem{ID: "hype"})
	if err != nil || res.Toggle != ToggleAdded {
		t.Fatalf("ToggleItem = %v, %v", res.Toggle, err)
	}

	base, _ := url.Parse("http://localhost:8080/")
	res, err = st.Apply(Share{Base: base})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if res.Link != "http://localhost:8080/?s=hype" {
		t.Errorf("Link = %q", res.Link)
	}

	res, err = st.Apply(Clear{})
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if st.Selection().Len() != 0 {
		t.Error("Clear left a selection")
	}
	if res.Sphere == nil || !res.Sphere.Gradient.Empty || !res.Sphere.Description.Empty {
		t.Errorf("Clear should rebuild the idle sphere, got %+v", res.Sphere)
	}

	if _, err := st.Apply(Share{}); err == nil {
		t.Error("Share without base should fail")
	}
}

func TestState_CapacityCommand(t *testing.T) {
	t.Parallel()
	idx := testIndex()
	st := NewState(idx, NewSource(1), idx.IDs()...)

	res, err := st.Apply(ToggleItem{ID: "glitch"})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	if res.Toggle != ToggleRejected {
		t.Errorf("Toggle = %v, want rejected", res.Toggle)
	}
	if st.Selection().Contains("glitch") {
		t.Error("rejected id was added")
	}
}

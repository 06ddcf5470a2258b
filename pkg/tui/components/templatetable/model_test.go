package templatetable

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/tmpl/pkg/template"
	"tableflip.dev/tmpl/pkg/tui/events"
	"tableflip.dev/tmpl/pkg/tui/theme"
)

var down = tea.KeyPressMsg{Code: 'j', Text: "j"}

func seeded() *Model {
	m := New("", theme.Default().Table)
	m.SetTemplates([]template.Template{
		{ID: 1, Subject: "Welcome", Body: "Hi"},
		{ID: 2, Subject: "Reset", Body: "Click here\nto reset"},
		{ID: 3, Subject: "Bye", Body: ""},
	})
	return m
}

func TestEmptyPlaceholder(t *testing.T) {
	m := New("", theme.Default().Table)
	if got := m.View(); !strings.Contains(got, EmptyText) {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("empty table should have no selection")
	}
}

func TestNavigationEmitsHighlight(t *testing.T) {
	m := seeded()
	cmd := m.Update(down)
	if cmd == nil {
		t.Fatalf("expected highlight command")
	}
	msg, ok := cmd().(events.TemplateHighlightMsg)
	if !ok || msg.Template.ID != 2 {
		t.Fatalf("expected highlight of id 2, got %#v", cmd())
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	if cur, _ := m.Selected(); cur.ID != 3 {
		t.Fatalf("expected last row, got %d", cur.ID)
	}
	if cmd := m.Update(down); cmd != nil {
		t.Fatalf("moving past the end should be a no-op")
	}
}

func TestSelectionFollowsIDAcrossReload(t *testing.T) {
	m := seeded()
	m.Update(down)
	m.SetTemplates([]template.Template{
		{ID: 9, Subject: "New"},
		{ID: 2, Subject: "Reset"},
	})
	if cur, _ := m.Selected(); cur.ID != 2 {
		t.Fatalf("expected selection to stay on id 2, got %d", cur.ID)
	}

	m.SetTemplates([]template.Template{{ID: 9, Subject: "New"}})
	if cur, _ := m.Selected(); cur.ID != 9 {
		t.Fatalf("expected selection to fall back to first row, got %d", cur.ID)
	}
}

func TestViewShowsRows(t *testing.T) {
	m := seeded()
	m.SetSize(60, 10)
	view := m.View()
	for _, want := range []string{"SUBJECT", "Welcome", "Reset", "Click here …"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestScrollKeepsSelectionVisible(t *testing.T) {
	m := seeded()
	m.SetSize(60, 3)
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	view := m.View()
	if !strings.Contains(view, "Bye") {
		t.Fatalf("selected row scrolled out of view:\n%s", view)
	}
	if strings.Contains(view, "Welcome") {
		t.Fatalf("expected first row scrolled away:\n%s", view)
	}
}

func TestChangeEventSelectsTemplate(t *testing.T) {
	m := seeded()
	m.Update(events.TemplateChangeMsg{Component: "templates", Action: events.ChangeUpdate, ID: 3})
	if cur, _ := m.Selected(); cur.ID != 3 {
		t.Fatalf("expected id 3 selected, got %d", cur.ID)
	}
	m.Update(events.TemplateChangeMsg{Component: "other", Action: events.ChangeCreate, ID: 1})
	if cur, _ := m.Selected(); cur.ID != 3 {
		t.Fatalf("change for another component moved the cursor to %d", cur.ID)
	}
}

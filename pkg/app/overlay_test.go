package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/tmpl/pkg/template"
)

func assertOverlayInvariant(t *testing.T, o *Orchestrator) {
	t.Helper()
	st := o.Overlay()
	if (st.Editing != nil) != (st.Visible == OverlayEdit) {
		t.Fatalf("editing=%v with visible=%s", st.Editing, st.Visible)
	}
}

func TestOverlayTransitions(t *testing.T) {
	o := NewOrchestrator(newMemoryTransport())
	assertOverlayInvariant(t, o)

	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("none->create: %v", err)
	}
	assertOverlayInvariant(t, o)
	if err := o.OpenEditOverlay(template.Template{ID: 1}); !errors.Is(err, ErrOverlayOpen) {
		t.Fatalf("create->edit must fail, got %v", err)
	}
	if err := o.OpenCreateOverlay(); !errors.Is(err, ErrOverlayOpen) {
		t.Fatalf("create->create must fail, got %v", err)
	}
	if err := o.CloseOverlay(context.Background()); err != nil {
		t.Fatalf("create->none: %v", err)
	}
	assertOverlayInvariant(t, o)

	if err := o.OpenEditOverlay(template.Template{ID: 1, Subject: "a"}); err != nil {
		t.Fatalf("none->edit: %v", err)
	}
	assertOverlayInvariant(t, o)
	if err := o.OpenCreateOverlay(); !errors.Is(err, ErrOverlayOpen) {
		t.Fatalf("edit->create must fail, got %v", err)
	}
	if err := o.CloseOverlay(context.Background()); err != nil {
		t.Fatalf("edit->none: %v", err)
	}
	assertOverlayInvariant(t, o)
	if o.Overlay().Visible != OverlayNone {
		t.Fatalf("expected none, got %s", o.Overlay().Visible)
	}
}

func TestEditRequiresID(t *testing.T) {
	o := NewOrchestrator(newMemoryTransport())
	if err := o.OpenEditOverlay(template.Template{Subject: "unsaved"}); !errors.Is(err, ErrNoID) {
		t.Fatalf("expected ErrNoID, got %v", err)
	}
	assertOverlayInvariant(t, o)
}

func TestCloseOverlayTriggersLoad(t *testing.T) {
	tr := newMemoryTransport(template.Template{ID: 1})
	o := NewOrchestrator(tr)
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	if err := o.CloseOverlay(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if diff := cmp.Diff([]string{"list"}, tr.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(o.Templates()) != 1 {
		t.Fatalf("expected reloaded collection")
	}
}

func TestCloseWithoutOverlayIsNoop(t *testing.T) {
	tr := newMemoryTransport()
	o := NewOrchestrator(tr)
	if err := o.CloseOverlay(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("expected no calls, got %v", tr.calls)
	}
}

func TestEditFormIsRebuiltPerTarget(t *testing.T) {
	a := template.Template{ID: 1, Subject: "A", Body: "a"}
	b := template.Template{ID: 2, Subject: "B", Body: "b"}
	o, _ := loaded(t, a, b)
	ctx := context.Background()

	if err := o.OpenEditOverlay(a); err != nil {
		t.Fatalf("open a: %v", err)
	}
	fa := o.Form(nil)
	fa.HandleFieldChange("subject", "abandoned edit")
	if err := o.CloseOverlay(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := o.OpenEditOverlay(b); err != nil {
		t.Fatalf("open b: %v", err)
	}
	fb := o.Form(nil)
	if fb == fa {
		t.Fatalf("expected a new form instance for a new target")
	}
	if diff := cmp.Diff(b.Fields(), fb.Values()); diff != "" {
		t.Fatalf("form for B shows stale values (-want +got):\n%s", diff)
	}
	if fb.SubmitLabel() != "Update" {
		t.Fatalf("unexpected label %q", fb.SubmitLabel())
	}
	if err := o.CloseOverlay(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := o.OpenEditOverlay(a); err != nil {
		t.Fatalf("reopen a: %v", err)
	}
	if got := o.Form(nil).Value("subject"); got != "A" {
		t.Fatalf("reopened form kept abandoned edit %q", got)
	}
}

func TestCreateFormStartsEmpty(t *testing.T) {
	o := NewOrchestrator(newMemoryTransport())
	if f := o.Form(nil); f != nil {
		t.Fatalf("expected no form without overlay")
	}
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	f := o.Form(nil)
	if f.Value("subject") != "" || f.Value("body") != "" {
		t.Fatalf("expected empty create form, got %+v", f.Values())
	}
	if f.SubmitLabel() != "Create" {
		t.Fatalf("unexpected label %q", f.SubmitLabel())
	}
	if key := o.FormKey(); key == "" {
		t.Fatalf("expected form key while overlay open")
	}
}

func TestFormSubmitCallbackReachesOrchestrator(t *testing.T) {
	o, _ := loaded(t)
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	var submitted template.Fields
	f := o.Form(func(v template.Fields) { submitted = v })
	f.HandleFieldChange("subject", "s")
	f.HandleSubmit()
	if err := o.Submit(context.Background(), submitted); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := o.Templates(); len(got) != 1 || got[0].Subject != "s" {
		t.Fatalf("unexpected collection %+v", got)
	}
}

func TestSubmitWithoutOverlay(t *testing.T) {
	o := NewOrchestrator(newMemoryTransport())
	if err := o.Submit(context.Background(), template.Fields{}); !errors.Is(err, ErrNoOverlay) {
		t.Fatalf("expected ErrNoOverlay, got %v", err)
	}
}

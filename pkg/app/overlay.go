package app

import (
	"context"
	"fmt"

	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/template"
)

// Overlay identifies which modal form is visible.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayCreate
	OverlayEdit
)

func (v Overlay) String() string {
	switch v {
	case OverlayCreate:
		return "create"
	case OverlayEdit:
		return "edit"
	default:
		return "none"
	}
}

// OverlayState is the visible overlay plus the edit target. Editing is set
// exactly when Visible is OverlayEdit.
type OverlayState struct {
	Visible Overlay
	Editing *template.Template
}

type mountedForm struct {
	key  string
	form *form.Form
}

// Overlay returns a copy of the overlay state.
func (o *Orchestrator) Overlay() OverlayState {
	st := OverlayState{Visible: o.overlay.Visible}
	if o.overlay.Editing != nil {
		e := *o.overlay.Editing
		st.Editing = &e
	}
	return st
}

// OpenCreateOverlay shows the empty create form.
func (o *Orchestrator) OpenCreateOverlay() error {
	if o.overlay.Visible != OverlayNone {
		return fmt.Errorf("open create over %s: %w", o.overlay.Visible, ErrOverlayOpen)
	}
	o.opens++
	o.overlay = OverlayState{Visible: OverlayCreate}
	o.mounted = nil
	return nil
}

// OpenEditOverlay shows the edit form seeded from t.
func (o *Orchestrator) OpenEditOverlay(t template.Template) error {
	if t.ID == 0 {
		return ErrNoID
	}
	if o.overlay.Visible != OverlayNone {
		return fmt.Errorf("open edit over %s: %w", o.overlay.Visible, ErrOverlayOpen)
	}
	o.opens++
	o.overlay = OverlayState{Visible: OverlayEdit, Editing: &t}
	o.mounted = nil
	return nil
}

// BeginClose hides the visible overlay and prepares the re-fetch that every
// close triggers. Closing when nothing is visible does nothing.
func (o *Orchestrator) BeginClose() (Call, bool) {
	if o.overlay.Visible == OverlayNone {
		return Call{}, false
	}
	o.hideOverlay()
	return o.BeginLoad()
}

// CloseOverlay hides the visible overlay and re-fetches the collection.
func (o *Orchestrator) CloseOverlay(ctx context.Context) error {
	call, ok := o.BeginClose()
	if !ok {
		return nil
	}
	return o.finish(ctx, call)
}

// BeginSubmit routes form values to create or update depending on the
// visible overlay.
func (o *Orchestrator) BeginSubmit(fields template.Fields) (Call, bool) {
	switch o.overlay.Visible {
	case OverlayCreate:
		return o.BeginCreate(fields)
	case OverlayEdit:
		return o.BeginUpdate(o.overlay.Editing.ID, fields)
	}
	return Call{}, false
}

// Submit is the synchronous form of BeginSubmit.
func (o *Orchestrator) Submit(ctx context.Context, fields template.Fields) error {
	if o.overlay.Visible == OverlayNone {
		return ErrNoOverlay
	}
	call, ok := o.BeginSubmit(fields)
	if !ok {
		return ErrInFlight
	}
	return o.finish(ctx, call)
}

// FormKey identifies the form instance for the visible overlay. It changes
// on every open, so each edit target gets a fresh form.
func (o *Orchestrator) FormKey() string {
	switch o.overlay.Visible {
	case OverlayCreate:
		return fmt.Sprintf("create#%d", o.opens)
	case OverlayEdit:
		return fmt.Sprintf("edit/%d#%d", o.overlay.Editing.ID, o.opens)
	}
	return ""
}

// Form returns the form mounted for the visible overlay, building it when the
// form key changed. The same instance is returned while the overlay stays
// open, so values typed before a failed submit survive for a retry. It
// returns nil when no overlay is visible.
func (o *Orchestrator) Form(onSubmit func(template.Fields)) *form.Form {
	key := o.FormKey()
	if key == "" {
		return nil
	}
	if o.mounted != nil && o.mounted.key == key {
		return o.mounted.form
	}
	cfg := form.Config{OnSubmit: onSubmit}
	switch o.overlay.Visible {
	case OverlayCreate:
		cfg.InitialValues = template.Fields{}
		cfg.SubmitLabel = "Create"
	case OverlayEdit:
		cfg.InitialValues = o.overlay.Editing.Fields()
		cfg.SubmitLabel = "Update"
	}
	o.mounted = &mountedForm{key: key, form: form.New(cfg)}
	return o.mounted.form
}

// formKeyFor returns the visible form's key when that form is the one a call
// for op on id submits, otherwise "".
func (o *Orchestrator) formKeyFor(op Op, id template.ID) string {
	switch {
	case op == OpCreate && o.overlay.Visible == OverlayCreate:
		return o.FormKey()
	case op == OpUpdate && o.overlay.Visible == OverlayEdit && o.overlay.Editing.ID == id:
		return o.FormKey()
	}
	return ""
}

// closeForm hides the overlay if key still names the visible form. A form
// reopened since the call started is left alone.
func (o *Orchestrator) closeForm(key string) {
	if key != "" && key == o.FormKey() {
		o.hideOverlay()
	}
}

func (o *Orchestrator) hideOverlay() {
	o.overlay = OverlayState{}
	o.mounted = nil
}

// Package form holds the state of the single input form used to create and
// edit templates. Renderers (the terminal UI component and the prompt driver)
// feed keystrokes or answers into a Form and let it hand the collected values
// to its submit callback.
package form

import (
	"tableflip.dev/tmpl/pkg/template"
)

// Field describes one input of the form.
type Field struct {
	Name      string
	Label     string
	Multiline bool
}

// DefaultFields are the template inputs in display order.
var DefaultFields = []Field{
	{Name: template.FieldSubject, Label: "Subject"},
	{Name: template.FieldBody, Label: "Body", Multiline: true},
}

// Config parameterizes a Form.
type Config struct {
	// InitialValues seed the form state. Missing keys start empty.
	InitialValues template.Fields
	// OnSubmit receives the entire form state on every submission.
	OnSubmit func(template.Fields)
	// SubmitLabel is the caption of the submit control.
	SubmitLabel string
	// Fields overrides DefaultFields.
	Fields []Field
}

// Form is the state of one mounted form instance. A Form never re-reads its
// initial values; callers build a new Form when the edit target changes.
type Form struct {
	fields      []Field
	state       template.Fields
	onSubmit    func(template.Fields)
	submitLabel string
	submissions int
}

// New builds a form from cfg. The initial values are copied.
func New(cfg Config) *Form {
	fields := cfg.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	label := cfg.SubmitLabel
	if label == "" {
		label = "Submit"
	}
	state := cfg.InitialValues.Clone()
	for _, f := range fields {
		if _, ok := state[f.Name]; !ok {
			state[f.Name] = ""
		}
	}
	return &Form{
		fields:      append([]Field(nil), fields...),
		state:       state,
		onSubmit:    cfg.OnSubmit,
		submitLabel: label,
	}
}

// Fields returns the inputs in display order.
func (f *Form) Fields() []Field {
	return append([]Field(nil), f.fields...)
}

// SubmitLabel returns the caption of the submit control.
func (f *Form) SubmitLabel() string { return f.submitLabel }

// HandleFieldChange overwrites exactly one key of the form state.
func (f *Form) HandleFieldChange(name, value string) {
	f.state[name] = value
}

// HandleSubmit hands a copy of the full state to the submit callback. The
// state is left as is, so a failed submission can be retried unchanged.
func (f *Form) HandleSubmit() {
	f.submissions++
	if f.onSubmit != nil {
		f.onSubmit(f.state.Clone())
	}
}

// Values returns a copy of the current state.
func (f *Form) Values() template.Fields {
	return f.state.Clone()
}

// Value returns the current value of one field.
func (f *Form) Value(name string) string {
	return f.state[name]
}

// Submissions counts HandleSubmit calls on this instance.
func (f *Form) Submissions() int { return f.submissions }

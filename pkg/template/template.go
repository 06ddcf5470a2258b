// Package template defines the template resource shared by the client, the
// form and the persistence service.
package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names understood by the form and the wire format.
const (
	FieldSubject = "subject"
	FieldBody    = "body"
)

// ID is the server-assigned identifier of a template. Zero means the template
// has not been created yet.
type ID int64

// String renders the id in decimal.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a positive decimal id.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("template: invalid id %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("template: invalid id %q: must be positive", s)
	}
	return ID(n), nil
}

// Template is a reusable message with a subject and a body.
type Template struct {
	ID      ID     `json:"id,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Fields is a flat field-name to value mapping as collected by a form.
type Fields map[string]string

// Clone returns an independent copy of f. A nil map clones to an empty one.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Fields returns the editable fields of t.
func (t Template) Fields() Fields {
	return Fields{
		FieldSubject: t.Subject,
		FieldBody:    t.Body,
	}
}

// Merge returns a copy of t with every known field present in f overwritten.
// Unknown keys are ignored and the id is never touched.
func (t Template) Merge(f Fields) Template {
	out := t
	if v, ok := f[FieldSubject]; ok {
		out.Subject = v
	}
	if v, ok := f[FieldBody]; ok {
		out.Body = v
	}
	return out
}

// FromFields builds an unsaved template from f.
func FromFields(f Fields) Template {
	return Template{}.Merge(f)
}

// IndexOf returns the position of the template with id in list, or -1.
func IndexOf(list []Template, id ID) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

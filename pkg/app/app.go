package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/template"
)

var (
	// ErrOverlayOpen is returned when an overlay is requested while another is visible.
	ErrOverlayOpen = errors.New("app: another overlay is open")
	// ErrNoID is returned when editing a template that was never created.
	ErrNoID = errors.New("app: template has no id")
	// ErrNoOverlay is returned when submitting while no form is visible.
	ErrNoOverlay = errors.New("app: no overlay is open")
	// ErrInFlight is returned when the same operation is already running.
	ErrInFlight = errors.New("app: operation already in flight")
)

// Op names an orchestrated remote operation.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Result is the outcome of a Call. It carries everything Apply needs, so a
// Call can run on any goroutine while Apply runs on the owner's.
type Result struct {
	Op        Op
	ID        template.ID
	Template  template.Template
	Templates []template.Template
	Err       error
	// FormKey is the overlay form the call was started from, empty when
	// none was visible. Only that form is closed by a successful result.
	FormKey string
}

// Call is a transport request prepared by one of the Begin methods.
type Call struct {
	Op  Op
	ID  template.ID
	run func(context.Context) Result
}

// Run performs the request. It only touches the transport.
func (c Call) Run(ctx context.Context) Result {
	if c.run == nil {
		return Result{Op: c.Op, ID: c.ID, Err: ErrInFlight}
	}
	return c.run(ctx)
}

type callKey struct {
	op Op
	id template.ID
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used to report operation outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator owns the in-memory template collection and the overlay state
// of one list view. It keeps the collection consistent with the server by
// mutating it only after a successful response and re-fetching after every
// mutation.
//
// An Orchestrator is not safe for concurrent use. Its methods are called from
// a single goroutine; only Call.Run may execute elsewhere.
type Orchestrator struct {
	transport client.Transport
	logger    *slog.Logger

	templates []template.Template
	err       error
	saved     *template.Template

	inflight      map[callKey]bool
	reloadPending bool

	overlay OverlayState
	opens   int
	mounted *mountedForm
}

// NewOrchestrator returns an orchestrator with an empty collection and no
// overlay.
func NewOrchestrator(t client.Transport, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport: t,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		templates: []template.Template{},
		inflight:  make(map[callKey]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Templates returns a copy of the collection in display order.
func (o *Orchestrator) Templates() []template.Template {
	return append([]template.Template{}, o.templates...)
}

// Find returns the template with id from the collection.
func (o *Orchestrator) Find(id template.ID) (template.Template, bool) {
	if i := template.IndexOf(o.templates, id); i >= 0 {
		return o.templates[i], true
	}
	return template.Template{}, false
}

// Saved returns the template echoed by the last successful create or update.
func (o *Orchestrator) Saved() (template.Template, bool) {
	if o.saved == nil {
		return template.Template{}, false
	}
	return *o.saved, true
}

// Err returns the last reported failure. It is cleared by the next success.
func (o *Orchestrator) Err() error { return o.err }

// InFlight reports whether op on id is awaiting its result.
func (o *Orchestrator) InFlight(op Op, id template.ID) bool {
	return o.inflight[callKey{op: op, id: id}]
}

// Busy reports whether any call is awaiting its result.
func (o *Orchestrator) Busy() bool { return len(o.inflight) > 0 }

// BeginLoad prepares a fetch of the full collection. While a load is in
// flight it returns false and schedules a follow-up load instead.
func (o *Orchestrator) BeginLoad() (Call, bool) {
	key := callKey{op: OpLoad}
	if o.inflight[key] {
		o.reloadPending = true
		return Call{}, false
	}
	o.inflight[key] = true
	tr := o.transport
	return Call{Op: OpLoad, run: func(ctx context.Context) Result {
		list, err := tr.List(ctx)
		return Result{Op: OpLoad, Templates: list, Err: err}
	}}, true
}

// BeginCreate prepares the creation of a template from fields.
func (o *Orchestrator) BeginCreate(fields template.Fields) (Call, bool) {
	key := callKey{op: OpCreate}
	if o.inflight[key] {
		return Call{}, false
	}
	o.inflight[key] = true
	tr := o.transport
	sent := fields.Clone()
	formKey := o.formKeyFor(OpCreate, 0)
	return Call{Op: OpCreate, run: func(ctx context.Context) Result {
		created, err := tr.Create(ctx, sent)
		return Result{Op: OpCreate, Template: created, Err: err, FormKey: formKey}
	}}, true
}

// BeginUpdate prepares the replacement of template id. The request carries
// the full entity: the known template merged with fields.
func (o *Orchestrator) BeginUpdate(id template.ID, fields template.Fields) (Call, bool) {
	key := callKey{op: OpUpdate, id: id}
	if id == 0 || o.inflight[key] {
		return Call{}, false
	}
	o.inflight[key] = true
	tr := o.transport
	entity := o.base(id).Merge(fields)
	entity.ID = id
	formKey := o.formKeyFor(OpUpdate, id)
	return Call{Op: OpUpdate, ID: id, run: func(ctx context.Context) Result {
		updated, err := tr.Update(ctx, entity)
		return Result{Op: OpUpdate, ID: id, Template: updated, Err: err, FormKey: formKey}
	}}, true
}

// BeginDelete prepares the removal of template id.
func (o *Orchestrator) BeginDelete(id template.ID) (Call, bool) {
	key := callKey{op: OpDelete, id: id}
	if id == 0 || o.inflight[key] {
		return Call{}, false
	}
	o.inflight[key] = true
	tr := o.transport
	return Call{Op: OpDelete, ID: id, run: func(ctx context.Context) Result {
		return Result{Op: OpDelete, ID: id, Err: tr.Delete(ctx, id)}
	}}, true
}

// Apply folds a result into the collection and overlay state. Failures are
// reported and leave both untouched. It returns true when a load should
// follow.
func (o *Orchestrator) Apply(res Result) bool {
	delete(o.inflight, callKey{op: res.Op, id: res.ID})

	if res.Err != nil {
		o.report(res)
		if res.Op == OpLoad && o.reloadPending {
			o.reloadPending = false
			return true
		}
		return false
	}
	o.err = nil

	switch res.Op {
	case OpLoad:
		o.templates = dedupe(res.Templates)
		o.logger.Debug("templates loaded", "count", len(o.templates))
		reload := o.reloadPending
		o.reloadPending = false
		return reload

	case OpCreate:
		created := res.Template
		if i := template.IndexOf(o.templates, created.ID); i >= 0 {
			o.templates[i] = created
		} else {
			o.templates = append(o.templates, created)
		}
		o.saved = &created
		o.closeForm(res.FormKey)
		o.logger.Info("template created", "id", created.ID)
		return true

	case OpUpdate:
		updated := res.Template
		updated.ID = res.ID
		if i := template.IndexOf(o.templates, res.ID); i >= 0 {
			o.templates[i] = updated
		}
		o.saved = &updated
		o.closeForm(res.FormKey)
		o.logger.Info("template updated", "id", res.ID)
		return true

	case OpDelete:
		if i := template.IndexOf(o.templates, res.ID); i >= 0 {
			o.templates = append(o.templates[:i:i], o.templates[i+1:]...)
		}
		o.logger.Info("template deleted", "id", res.ID)
		return true
	}
	return false
}

// Load fetches the collection and replaces the local copy wholesale.
func (o *Orchestrator) Load(ctx context.Context) error {
	call, ok := o.BeginLoad()
	if !ok {
		return ErrInFlight
	}
	return o.finish(ctx, call)
}

// Create submits a new template and re-fetches on success.
func (o *Orchestrator) Create(ctx context.Context, fields template.Fields) error {
	call, ok := o.BeginCreate(fields)
	if !ok {
		return ErrInFlight
	}
	return o.finish(ctx, call)
}

// Update replaces template id with its merged fields and re-fetches on success.
func (o *Orchestrator) Update(ctx context.Context, id template.ID, fields template.Fields) error {
	if id == 0 {
		return ErrNoID
	}
	call, ok := o.BeginUpdate(id, fields)
	if !ok {
		return ErrInFlight
	}
	return o.finish(ctx, call)
}

// Delete removes template id and re-fetches on success.
func (o *Orchestrator) Delete(ctx context.Context, id template.ID) error {
	if id == 0 {
		return ErrNoID
	}
	call, ok := o.BeginDelete(id)
	if !ok {
		return ErrInFlight
	}
	return o.finish(ctx, call)
}

// finish runs call in place and follows up with the loads Apply asks for.
// Only the error of call itself is returned; follow-up failures surface
// through Err.
func (o *Orchestrator) finish(ctx context.Context, call Call) error {
	res := call.Run(ctx)
	reload := o.Apply(res)
	for reload {
		next, ok := o.BeginLoad()
		if !ok {
			break
		}
		reload = o.Apply(next.Run(ctx))
	}
	return res.Err
}

func (o *Orchestrator) base(id template.ID) template.Template {
	if e := o.overlay.Editing; e != nil && e.ID == id {
		return *e
	}
	if t, ok := o.Find(id); ok {
		return t
	}
	return template.Template{ID: id}
}

func (o *Orchestrator) report(res Result) {
	o.err = res.Err
	attrs := []any{"op", string(res.Op), "err", res.Err}
	if res.ID != 0 {
		attrs = append(attrs, "id", res.ID)
	}
	o.logger.Error("template operation failed", attrs...)
}

func dedupe(list []template.Template) []template.Template {
	out := make([]template.Template, 0, len(list))
	seen := make(map[template.ID]bool, len(list))
	for _, t := range list {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/template"
)

var errBoom = &client.Error{Op: "test", Status: 500, Message: "Something went wrong: boom"}

type memoryTransport struct {
	mu      sync.Mutex
	counter template.ID
	items   []template.Template
	fail    map[Op]error
	calls   []string
	updates []template.Template
	// listOverride, when set, is returned by List instead of items.
	listOverride []template.Template
}

func newMemoryTransport(items ...template.Template) *memoryTransport {
	m := &memoryTransport{fail: make(map[Op]error)}
	for _, t := range items {
		if t.ID > m.counter {
			m.counter = t.ID
		}
		m.items = append(m.items, t)
	}
	return m
}

func (m *memoryTransport) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memoryTransport) List(_ context.Context) ([]template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list")
	if err := m.fail[OpLoad]; err != nil {
		return nil, err
	}
	if m.listOverride != nil {
		return append([]template.Template(nil), m.listOverride...), nil
	}
	return append([]template.Template{}, m.items...), nil
}

func (m *memoryTransport) Get(_ context.Context, id template.ID) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("get %d", id))
	if i := template.IndexOf(m.items, id); i >= 0 {
		return m.items[i], nil
	}
	return template.Template{}, &client.Error{Op: "read", Status: 404}
}

func (m *memoryTransport) Create(_ context.Context, fields template.Fields) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	if err := m.fail[OpCreate]; err != nil {
		return template.Template{}, err
	}
	m.counter++
	t := template.FromFields(fields)
	t.ID = m.counter
	m.items = append(m.items, t)
	return t, nil
}

func (m *memoryTransport) Update(_ context.Context, t template.Template) (template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("update %d", t.ID))
	m.updates = append(m.updates, t)
	if err := m.fail[OpUpdate]; err != nil {
		return template.Template{}, err
	}
	i := template.IndexOf(m.items, t.ID)
	if i < 0 {
		return template.Template{}, &client.Error{Op: "update", Status: 404}
	}
	m.items[i] = t
	return t, nil
}

func (m *memoryTransport) Delete(_ context.Context, id template.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(fmt.Sprintf("delete %d", id))
	if err := m.fail[OpDelete]; err != nil {
		return err
	}
	i := template.IndexOf(m.items, id)
	if i < 0 {
		return &client.Error{Op: "delete", Status: 404}
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func loaded(t *testing.T, items ...template.Template) (*Orchestrator, *memoryTransport) {
	t.Helper()
	tr := newMemoryTransport(items...)
	o := NewOrchestrator(tr)
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return o, tr
}

func assertUniqueIDs(t *testing.T, list []template.Template) {
	t.Helper()
	seen := map[template.ID]bool{}
	for _, item := range list {
		if seen[item.ID] {
			t.Fatalf("duplicate id %d in %+v", item.ID, list)
		}
		seen[item.ID] = true
	}
}

func TestLoadReplacesCollectionAndIsIdempotent(t *testing.T) {
	seed := []template.Template{{ID: 1, Subject: "a"}, {ID: 2, Subject: "b"}}
	o, _ := loaded(t, seed...)
	first := o.Templates()
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if diff := cmp.Diff(seed, first); diff != "" {
		t.Fatalf("first load mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, o.Templates()); diff != "" {
		t.Fatalf("load not idempotent (-first +second):\n%s", diff)
	}
}

func TestLoadKeepsFirstOfDuplicateIDs(t *testing.T) {
	tr := newMemoryTransport()
	tr.listOverride = []template.Template{{ID: 1, Subject: "first"}, {ID: 1, Subject: "second"}, {ID: 2}}
	o := NewOrchestrator(tr)
	if err := o.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := o.Templates()
	assertUniqueIDs(t, got)
	if len(got) != 2 || got[0].Subject != "first" {
		t.Fatalf("unexpected collection %+v", got)
	}
}

func TestLoadFailureKeepsPreviousState(t *testing.T) {
	o, tr := loaded(t, template.Template{ID: 1, Subject: "a"})
	before := o.Templates()
	tr.fail[OpLoad] = errBoom
	err := o.Load(context.Background())
	if !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if diff := cmp.Diff(before, o.Templates()); diff != "" {
		t.Fatalf("collection changed on failure (-want +got):\n%s", diff)
	}
	if !errors.Is(o.Err(), client.ErrTransport) {
		t.Fatalf("expected reported error, got %v", o.Err())
	}
}

func TestCreateAppendsOnceClosesOverlayAndReloads(t *testing.T) {
	o, tr := loaded(t, template.Template{ID: 1, Subject: "a"})
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	tr.calls = nil
	if err := o.Create(context.Background(), template.Fields{"subject": "s", "body": "b"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := o.Templates()
	assertUniqueIDs(t, got)
	n := 0
	for _, item := range got {
		if item.Subject == "s" && item.Body == "b" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected created template exactly once, got %d in %+v", n, got)
	}
	if o.Overlay().Visible != OverlayNone {
		t.Fatalf("expected overlay closed, got %s", o.Overlay().Visible)
	}
	if diff := cmp.Diff([]string{"create", "list"}, tr.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if o.Err() != nil {
		t.Fatalf("unexpected error %v", o.Err())
	}
}

func TestCreateFailureKeepsOverlayAndCollection(t *testing.T) {
	o, tr := loaded(t, template.Template{ID: 1, Subject: "a"})
	before := o.Templates()
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	f := o.Form(nil)
	f.HandleFieldChange("subject", "typed")
	tr.fail[OpCreate] = errBoom
	tr.calls = nil

	if err := o.Submit(context.Background(), f.Values()); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if diff := cmp.Diff(before, o.Templates()); diff != "" {
		t.Fatalf("collection changed on failure (-want +got):\n%s", diff)
	}
	if o.Overlay().Visible != OverlayCreate {
		t.Fatalf("expected create overlay to stay open, got %s", o.Overlay().Visible)
	}
	if again := o.Form(nil); again != f || again.Value("subject") != "typed" {
		t.Fatalf("expected the same form with typed values after failure")
	}
	if diff := cmp.Diff([]string{"create"}, tr.calls); diff != "" {
		t.Fatalf("failure must not re-fetch (-want +got):\n%s", diff)
	}
}

func TestUpdateSendsMergedEntityAndPreservesID(t *testing.T) {
	o, tr := loaded(t, template.Template{ID: 4, Subject: "Welcome", Body: "Hi"})
	if err := o.Update(context.Background(), 4, template.Fields{"subject": "Welcome!"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := template.Template{ID: 4, Subject: "Welcome!", Body: "Hi"}
	if diff := cmp.Diff([]template.Template{want}, tr.updates); diff != "" {
		t.Fatalf("sent entity mismatch (-want +got):\n%s", diff)
	}
	got, ok := o.Find(4)
	if !ok {
		t.Fatalf("template 4 missing after update")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updated template mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateFailureKeepsEditOverlay(t *testing.T) {
	seed := template.Template{ID: 1, Subject: "a", Body: "b"}
	o, tr := loaded(t, seed)
	if err := o.OpenEditOverlay(seed); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	tr.fail[OpUpdate] = errBoom
	if err := o.Submit(context.Background(), template.Fields{"subject": "x"}); err == nil {
		t.Fatalf("expected failure")
	}
	st := o.Overlay()
	if st.Visible != OverlayEdit || st.Editing == nil || st.Editing.ID != 1 {
		t.Fatalf("expected edit overlay for 1, got %+v", st)
	}
	if diff := cmp.Diff([]template.Template{seed}, o.Templates()); diff != "" {
		t.Fatalf("collection changed on failure (-want +got):\n%s", diff)
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	o, _ := loaded(t,
		template.Template{ID: 1, Subject: "a"},
		template.Template{ID: 2, Subject: "b"},
		template.Template{ID: 3, Subject: "c"},
	)
	if err := o.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []template.Template{{ID: 1, Subject: "a"}, {ID: 3, Subject: "c"}}
	if diff := cmp.Diff(want, o.Templates()); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteFailureLeavesCollectionIdentical(t *testing.T) {
	o, tr := loaded(t, template.Template{ID: 1}, template.Template{ID: 2})
	before := o.Templates()
	tr.fail[OpDelete] = errBoom
	if err := o.Delete(context.Background(), 2); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if diff := cmp.Diff(before, o.Templates()); diff != "" {
		t.Fatalf("collection changed on failure (-want +got):\n%s", diff)
	}
}

func TestDeleteMissingIDSurfacesTransportFailure(t *testing.T) {
	o, _ := loaded(t, template.Template{ID: 1})
	if err := o.Delete(context.Background(), 99); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestBeginRejectsReentryUntilApplied(t *testing.T) {
	o, _ := loaded(t, template.Template{ID: 1})
	call, ok := o.BeginDelete(1)
	if !ok {
		t.Fatalf("expected first delete to start")
	}
	if _, ok := o.BeginDelete(1); ok {
		t.Fatalf("expected second delete of the same id to be refused")
	}
	if _, ok := o.BeginUpdate(1, nil); !ok {
		t.Fatalf("independent operation must not be blocked")
	}
	if !o.InFlight(OpDelete, 1) {
		t.Fatalf("expected delete 1 in flight")
	}
	o.Apply(call.Run(context.Background()))
	if o.InFlight(OpDelete, 1) {
		t.Fatalf("expected delete 1 settled")
	}
	if _, ok := o.BeginDelete(1); !ok {
		t.Fatalf("expected delete to be allowed again after apply")
	}
}

func TestLoadRequestedDuringLoadIsFollowedUp(t *testing.T) {
	tr := newMemoryTransport(template.Template{ID: 1})
	o := NewOrchestrator(tr)
	first, ok := o.BeginLoad()
	if !ok {
		t.Fatalf("expected load to start")
	}
	if _, ok := o.BeginLoad(); ok {
		t.Fatalf("expected concurrent load to be refused")
	}
	if !o.Apply(first.Run(context.Background())) {
		t.Fatalf("expected apply to ask for the pending reload")
	}
	second, ok := o.BeginLoad()
	if !ok {
		t.Fatalf("expected follow-up load to start")
	}
	if o.Apply(second.Run(context.Background())) {
		t.Fatalf("no further reload expected")
	}
}

func TestOutOfOrderCompletionsBothApply(t *testing.T) {
	o, _ := loaded(t, template.Template{ID: 1, Subject: "a"}, template.Template{ID: 2, Subject: "b"})
	ctx := context.Background()
	upd, _ := o.BeginUpdate(1, template.Fields{"subject": "A"})
	del, _ := o.BeginDelete(2)

	delRes := del.Run(ctx)
	updRes := upd.Run(ctx)
	o.Apply(delRes)
	o.Apply(updRes)

	want := []template.Template{{ID: 1, Subject: "A"}}
	if diff := cmp.Diff(want, o.Templates()); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}
}

func TestResultAppliesAfterOverlayClosed(t *testing.T) {
	o, _ := loaded(t)
	ctx := context.Background()
	if err := o.OpenCreateOverlay(); err != nil {
		t.Fatalf("open create: %v", err)
	}
	create, ok := o.BeginSubmit(template.Fields{"subject": "late"})
	if !ok {
		t.Fatalf("expected create to start")
	}
	reload, ok := o.BeginClose()
	if !ok {
		t.Fatalf("expected close to prepare a reload")
	}
	if o.Overlay().Visible != OverlayNone {
		t.Fatalf("expected overlay closed")
	}
	createRes := create.Run(ctx)
	o.Apply(reload.Run(ctx))
	if !o.Apply(createRes) {
		t.Fatalf("expected create to ask for a reload")
	}
	if _, ok := o.Find(createRes.Template.ID); !ok {
		t.Fatalf("late create result was not applied")
	}
	if o.Overlay().Visible != OverlayNone {
		t.Fatalf("late result must not reopen or alter overlays")
	}
}

func TestLateResultLeavesReopenedFormOpen(t *testing.T) {
	ctx := context.Background()
	tests := map[string]struct {
		open   func(o *Orchestrator) error
		fields template.Fields
	}{
		"create": {
			open:   func(o *Orchestrator) error { return o.OpenCreateOverlay() },
			fields: template.Fields{"subject": "late"},
		},
		"edit": {
			open: func(o *Orchestrator) error {
				target, _ := o.Find(1)
				return o.OpenEditOverlay(target)
			},
			fields: template.Fields{"subject": "late"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			o, _ := loaded(t, template.Template{ID: 1, Subject: "Welcome"})
			if err := tc.open(o); err != nil {
				t.Fatalf("open: %v", err)
			}
			submit, ok := o.BeginSubmit(tc.fields)
			if !ok {
				t.Fatalf("expected submit to start")
			}
			reload, ok := o.BeginClose()
			if !ok {
				t.Fatalf("expected close to prepare a reload")
			}
			o.Apply(reload.Run(ctx))

			if err := tc.open(o); err != nil {
				t.Fatalf("reopen: %v", err)
			}
			visible, key := o.Overlay().Visible, o.FormKey()

			o.Apply(submit.Run(ctx))
			if got := o.Overlay().Visible; got != visible {
				t.Fatalf("late result closed the reopened form: overlay %v, want %v", got, visible)
			}
			if got := o.FormKey(); got != key {
				t.Fatalf("form key changed from %q to %q", key, got)
			}
		})
	}
}

func TestUpdateOfOtherIDKeepsEditOverlay(t *testing.T) {
	o, _ := loaded(t,
		template.Template{ID: 1, Subject: "Welcome"},
		template.Template{ID: 2, Subject: "Reset"},
	)
	target, _ := o.Find(1)
	if err := o.OpenEditOverlay(target); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	if err := o.Update(context.Background(), 2, template.Fields{"subject": "Reset!"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := o.Overlay(); got.Visible != OverlayEdit || got.Editing.ID != 1 {
		t.Fatalf("expected edit of 1 to stay open, got %+v", got)
	}
}

func TestEndToEndEditThenDelete(t *testing.T) {
	o, _ := loaded(t, template.Template{ID: 1, Subject: "Welcome", Body: "Hi"})
	ctx := context.Background()

	target, _ := o.Find(1)
	if err := o.OpenEditOverlay(target); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	f := o.Form(nil)
	f.HandleFieldChange("subject", "Welcome!")
	f.HandleFieldChange("body", "Hi there")
	if err := o.Submit(ctx, f.Values()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Overlay().Visible != OverlayNone {
		t.Fatalf("expected overlay closed after update")
	}
	want := []template.Template{{ID: 1, Subject: "Welcome!", Body: "Hi there"}}
	if diff := cmp.Diff(want, o.Templates()); diff != "" {
		t.Fatalf("after update (-want +got):\n%s", diff)
	}

	if err := o.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := o.Templates(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %+v", got)
	}
}

func TestSavedTracksLastEcho(t *testing.T) {
	o, _ := loaded(t, template.Template{ID: 1, Subject: "a"})
	if _, ok := o.Saved(); ok {
		t.Fatalf("nothing saved yet")
	}
	if err := o.Create(context.Background(), template.Fields{"subject": "s"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got, _ := o.Saved(); got.ID != 2 || got.Subject != "s" {
		t.Fatalf("expected created template, got %+v", got)
	}
	if err := o.Update(context.Background(), 1, template.Fields{"body": "b"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := template.Template{ID: 1, Subject: "a", Body: "b"}
	if got, _ := o.Saved(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/store"
	"tableflip.dev/tmpl/pkg/template"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	h := New(store.NewMemory()).Handler()

	rec := do(t, h, http.MethodGet, "/select_templates", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/create_template", `{"id":77,"subject":"Welcome","body":"Hi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created template.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.ID != 1 || created.Subject != "Welcome" {
		t.Fatalf("unexpected created template %+v", created)
	}

	rec = do(t, h, http.MethodPut, "/update_template?id=1", `{"id":5,"subject":"Welcome!","body":"Hi there"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated template.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	want := template.Template{ID: 1, Subject: "Welcome!", Body: "Hi there"}
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Fatalf("update mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodGet, "/read_template?id=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("read: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/delete_template?id=1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(client.HeaderRequestID) == "" {
		t.Fatalf("expected request id header on response")
	}
}

func TestRouteErrors(t *testing.T) {
	h := New(store.NewMemory()).Handler()
	cases := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"read missing", http.MethodGet, "/read_template?id=9", "", http.StatusNotFound},
		{"update missing", http.MethodPut, "/update_template?id=9", `{"subject":"x"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/delete_template?id=9", "", http.StatusNotFound},
		{"bad id", http.MethodDelete, "/delete_template?id=abc", "", http.StatusBadRequest},
		{"no id", http.MethodGet, "/read_template", "", http.StatusBadRequest},
		{"bad body", http.MethodPost, "/create_template", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := do(t, h, tc.method, tc.target, tc.body); rec.Code != tc.code {
				t.Fatalf("expected %d, got %d %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

type brokenStore struct{ store.Persistence }

func (brokenStore) List(context.Context) ([]template.Template, error) {
	return nil, errors.New("disk on fire")
}

func TestStorageFailureIs500(t *testing.T) {
	h := New(brokenStore{store.NewMemory()}).Handler()
	rec := do(t, h, http.MethodGet, "/select_templates", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "Something went wrong: disk on fire" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := New(store.NewMemory()).Handler()
	req := httptest.NewRequest(http.MethodGet, "/select_templates", nil)
	req.Header.Set(client.HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(client.HeaderRequestID); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestCORSPreflightAllowed(t *testing.T) {
	h := New(store.NewMemory(), WithAllowOrigins("*")).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/update_template?id=1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers, got %v", rec.Header())
	}
}

func TestClientAndOrchestratorAgainstServer(t *testing.T) {
	ctx := context.Background()
	p := store.NewMemory()
	if _, err := p.Create(ctx, template.Template{Subject: "Welcome", Body: "Hi"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(New(p).Handler())
	defer srv.Close()

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	o := app.NewOrchestrator(c)
	if err := o.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]template.Template{{ID: 1, Subject: "Welcome", Body: "Hi"}}, o.Templates()); diff != "" {
		t.Fatalf("initial list (-want +got):\n%s", diff)
	}

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
	if diff := cmp.Diff([]template.Template{{ID: 1, Subject: "Welcome!", Body: "Hi there"}}, o.Templates()); diff != "" {
		t.Fatalf("after update (-want +got):\n%s", diff)
	}

	if err := o.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := o.Templates(); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
	if err := o.Delete(ctx, 1); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("deleting a missing id should be a transport failure, got %v", err)
	}
}

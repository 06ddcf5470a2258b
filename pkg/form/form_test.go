package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/tmpl/pkg/template"
)

func TestSubmitHandsOverFullStateAndKeepsIt(t *testing.T) {
	var got []template.Fields
	f := New(Config{
		InitialValues: template.Fields{"subject": "Welcome", "body": "Hi"},
		OnSubmit:      func(v template.Fields) { got = append(got, v) },
		SubmitLabel:   "Update",
	})
	f.HandleFieldChange("subject", "Welcome!")
	f.HandleSubmit()
	f.HandleSubmit()

	want := template.Fields{"subject": "Welcome!", "body": "Hi"}
	if len(got) != 2 {
		t.Fatalf("expected two submissions, got %d", len(got))
	}
	for i, v := range got {
		if diff := cmp.Diff(want, v); diff != "" {
			t.Fatalf("submission %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if diff := cmp.Diff(want, f.Values()); diff != "" {
		t.Fatalf("state cleared after submit (-want +got):\n%s", diff)
	}
	if f.SubmitLabel() != "Update" {
		t.Fatalf("unexpected label %q", f.SubmitLabel())
	}
}

func TestFieldChangeTouchesOneKey(t *testing.T) {
	f := New(Config{InitialValues: template.Fields{"subject": "a", "body": "b"}})
	f.HandleFieldChange("body", "c")
	want := template.Fields{"subject": "a", "body": "c"}
	if diff := cmp.Diff(want, f.Values()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialValuesAreCopied(t *testing.T) {
	initial := template.Fields{"subject": "a"}
	f := New(Config{InitialValues: initial})
	initial["subject"] = "changed"
	if got := f.Value("subject"); got != "a" {
		t.Fatalf("form observed caller mutation: %q", got)
	}
	if got := f.Value("body"); got != "" {
		t.Fatalf("expected empty body, got %q", got)
	}
}

func TestSubmittedValuesAreIndependentOfForm(t *testing.T) {
	var got template.Fields
	f := New(Config{OnSubmit: func(v template.Fields) { got = v }})
	f.HandleFieldChange("subject", "s")
	f.HandleSubmit()
	got["subject"] = "mutated"
	if f.Value("subject") != "s" {
		t.Fatalf("callback mutation leaked into form state")
	}
}

type fakeDriver struct {
	answers map[string]string
	asked   []string
	err     error
}

func (d *fakeDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, "input:"+cfg.Message+"="+cfg.Default)
	if d.err != nil {
		return "", d.err
	}
	return d.answers[cfg.Message], nil
}

func (d *fakeDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	d.asked = append(d.asked, "textarea:"+cfg.Message+"="+cfg.Default)
	if d.err != nil {
		return "", d.err
	}
	return d.answers[cfg.Message], nil
}

func TestPromptFillsEveryFieldThenSubmits(t *testing.T) {
	var got template.Fields
	f := New(Config{
		InitialValues: template.Fields{"subject": "Welcome", "body": "Hi"},
		OnSubmit:      func(v template.Fields) { got = v },
	})
	d := &fakeDriver{answers: map[string]string{"Subject:": "Welcome!", "Body:": "Hi there"}}
	if err := Prompt(context.Background(), d, f); err != nil {
		t.Fatalf("prompt: %v", err)
	}
	wantAsked := []string{"input:Subject:=Welcome", "textarea:Body:=Hi"}
	if diff := cmp.Diff(wantAsked, d.asked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	want := template.Fields{"subject": "Welcome!", "body": "Hi there"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submitted mismatch (-want +got):\n%s", diff)
	}
}

func TestPromptAbortDoesNotSubmit(t *testing.T) {
	f := New(Config{OnSubmit: func(template.Fields) { t.Fatalf("unexpected submit") }})
	d := &fakeDriver{err: ErrAborted}
	if err := Prompt(context.Background(), d, f); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if f.Submissions() != 0 {
		t.Fatalf("expected no submissions")
	}
}

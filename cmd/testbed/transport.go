package main

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/store"
	"tableflip.dev/tmpl/pkg/template"
)

// slowTransport serves a Persistence with a fixed delay and scripted
// failures, so in-flight and error states stay visible.
type slowTransport struct {
	store.Persistence
	latency time.Duration
	fail    map[app.Op]bool
}

var _ client.Transport = (*slowTransport)(nil)

func (s *slowTransport) wait(ctx context.Context, op app.Op, id template.ID) error {
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.fail[op] {
		return &client.Error{Op: string(op), Status: 500, Message: fmt.Sprintf("testbed: %s %d failed on purpose", op, id)}
	}
	return nil
}

func (s *slowTransport) List(ctx context.Context) ([]template.Template, error) {
	if err := s.wait(ctx, app.OpLoad, 0); err != nil {
		return nil, err
	}
	return s.Persistence.List(ctx)
}

func (s *slowTransport) Create(ctx context.Context, fields template.Fields) (template.Template, error) {
	if err := s.wait(ctx, app.OpCreate, 0); err != nil {
		return template.Template{}, err
	}
	return s.Persistence.Create(ctx, template.FromFields(fields))
}

func (s *slowTransport) Update(ctx context.Context, t template.Template) (template.Template, error) {
	if err := s.wait(ctx, app.OpUpdate, t.ID); err != nil {
		return template.Template{}, err
	}
	return s.Persistence.Update(ctx, t)
}

func (s *slowTransport) Delete(ctx context.Context, id template.ID) error {
	if err := s.wait(ctx, app.OpDelete, id); err != nil {
		return err
	}
	return s.Persistence.Delete(ctx, id)
}

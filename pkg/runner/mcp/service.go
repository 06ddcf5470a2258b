// Package mcp exposes the template collection to Model Context Protocol
// clients.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/template"
)

// Service runs template operations on behalf of MCP tools and resources.
type Service struct {
	Transport client.Transport
}

// ErrNoTransport is returned when the service has nothing to talk to.
var ErrNoTransport = errors.New("mcp: transport is not configured")

// UpdateOptions carries a partial update. Nil fields keep their value.
type UpdateOptions struct {
	ID      template.ID
	Subject *string
	Body    *string
}

// NewService builds a service over t.
func NewService(t client.Transport) *Service {
	return &Service{Transport: t}
}

// ListTemplates returns every template.
func (s *Service) ListTemplates(ctx context.Context) ([]template.Template, error) {
	if s.Transport == nil {
		return nil, ErrNoTransport
	}
	list, err := s.Transport.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []template.Template{}
	}
	return list, nil
}

// TemplateByID returns one template.
func (s *Service) TemplateByID(ctx context.Context, id template.ID) (template.Template, error) {
	if s.Transport == nil {
		return template.Template{}, ErrNoTransport
	}
	return s.Transport.Get(ctx, id)
}

// CreateTemplate stores a new template. The subject must not be blank.
func (s *Service) CreateTemplate(ctx context.Context, subject, body string) (template.Template, error) {
	if s.Transport == nil {
		return template.Template{}, ErrNoTransport
	}
	if strings.TrimSpace(subject) == "" {
		return template.Template{}, errors.New("subject is required")
	}
	return s.Transport.Create(ctx, template.Fields{
		template.FieldSubject: subject,
		template.FieldBody:    body,
	})
}

// UpdateTemplate reads the current template, applies opts and sends the full
// entity back.
func (s *Service) UpdateTemplate(ctx context.Context, opts UpdateOptions) (template.Template, error) {
	if s.Transport == nil {
		return template.Template{}, ErrNoTransport
	}
	if opts.Subject == nil && opts.Body == nil {
		return template.Template{}, errors.New("nothing to update: provide subject or body")
	}
	current, err := s.Transport.Get(ctx, opts.ID)
	if err != nil {
		return template.Template{}, fmt.Errorf("load template %d: %w", opts.ID, err)
	}
	fields := template.Fields{}
	if opts.Subject != nil {
		fields[template.FieldSubject] = *opts.Subject
	}
	if opts.Body != nil {
		fields[template.FieldBody] = *opts.Body
	}
	return s.Transport.Update(ctx, current.Merge(fields))
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id template.ID) error {
	if s.Transport == nil {
		return ErrNoTransport
	}
	return s.Transport.Delete(ctx, id)
}

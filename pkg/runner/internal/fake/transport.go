// Package fake provides an in-memory client.Transport for runner tests.
package fake

import (
	"context"
	"sync"

	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/form"
	"tableflip.dev/tmpl/pkg/store"
	"tableflip.dev/tmpl/pkg/template"
)

// Transport serves templates from a store.Persistence. Calls fail with Err
// when it is set.
type Transport struct {
	store.Persistence

	mu    sync.Mutex
	Err   error
	Calls []string
}

var (
	_ client.Transport  = (*Transport)(nil)
	_ form.PromptDriver = (*Prompter)(nil)
)

// New returns a transport seeded with templates; ids are reassigned in order.
func New(seed ...template.Template) *Transport {
	p := store.NewMemory()
	for _, t := range seed {
		_, _ = p.Create(context.Background(), t)
	}
	return &Transport{Persistence: p}
}

func (t *Transport) enter(call string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = append(t.Calls, call)
	return t.Err
}

func (t *Transport) List(ctx context.Context) ([]template.Template, error) {
	if err := t.enter("list"); err != nil {
		return nil, err
	}
	return t.Persistence.List(ctx)
}

func (t *Transport) Get(ctx context.Context, id template.ID) (template.Template, error) {
	if err := t.enter("get"); err != nil {
		return template.Template{}, err
	}
	return t.Persistence.Get(ctx, id)
}

func (t *Transport) Create(ctx context.Context, fields template.Fields) (template.Template, error) {
	if err := t.enter("create"); err != nil {
		return template.Template{}, err
	}
	return t.Persistence.Create(ctx, template.FromFields(fields))
}

func (t *Transport) Update(ctx context.Context, tm template.Template) (template.Template, error) {
	if err := t.enter("update"); err != nil {
		return template.Template{}, err
	}
	return t.Persistence.Update(ctx, tm)
}

func (t *Transport) Delete(ctx context.Context, id template.ID) error {
	if err := t.enter("delete"); err != nil {
		return err
	}
	return t.Persistence.Delete(ctx, id)
}

// Prompter answers form prompts from a fixed map keyed by prompt message.
// Unanswered prompts keep their default.
type Prompter struct {
	mu      sync.Mutex
	Answers map[string]string
	Err     error
	Asked   []string
}

func (p *Prompter) answer(msg, def string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Asked = append(p.Asked, msg)
	if p.Err != nil {
		return "", p.Err
	}
	if v, ok := p.Answers[msg]; ok {
		return v, nil
	}
	return def, nil
}

func (p *Prompter) Input(_ context.Context, cfg form.InputConfig) (string, error) {
	return p.answer(cfg.Message, cfg.Default)
}

func (p *Prompter) TextArea(_ context.Context, cfg form.TextAreaConfig) (string, error) {
	return p.answer(cfg.Message, cfg.Default)
}

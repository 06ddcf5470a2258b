package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/tmpl/pkg/template"
)

const (
	templatesPrefix = "templates"
	seqKey          = "meta-seq"
)

// LoadDiskv creates a Persistence backed by diskv rooted at basePath. Each
// template is one JSON file; the last assigned id lives in a separate key.
func LoadDiskv(basePath string) (Persistence, error) {
	if basePath == "" {
		return nil, fmt.Errorf("store: diskv needs a base path")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) read(key string) (template.Template, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return template.Template{}, err
	}
	t := template.Template{}
	if err := json.Unmarshal(val, &t); err != nil {
		return template.Template{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return t, nil
}

func (p *persistence) write(t template.Template) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return p.d.Write(toKey(t.ID), data)
}

func (p *persistence) List(ctx context.Context) ([]template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	all := make([]template.Template, 0)
	for key := range p.d.KeysPrefix(templatesPrefix+"-", ctx.Done()) {
		t, err := p.read(key)
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (p *persistence) Get(_ context.Context, id template.ID) (template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.d.Has(toKey(id)) {
		return template.Template{}, ErrNotFound
	}
	return p.read(toKey(id))
}

func (p *persistence) Create(_ context.Context, t template.Template) (template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, err := p.nextID()
	if err != nil {
		return template.Template{}, err
	}
	t.ID = id
	if err := p.write(t); err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (p *persistence) Update(_ context.Context, t template.Template) (template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.d.Has(toKey(t.ID)) {
		return template.Template{}, ErrNotFound
	}
	if err := p.write(t); err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (p *persistence) Delete(_ context.Context, id template.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.d.Has(toKey(id)) {
		return ErrNotFound
	}
	return p.d.Erase(toKey(id))
}

func (p *persistence) Close() error { return nil }

// nextID bumps the stored sequence. Ids are never reused, even after deletes.
func (p *persistence) nextID() (template.ID, error) {
	var last int64
	if p.d.Has(seqKey) {
		raw, err := p.d.Read(seqKey)
		if err != nil {
			return 0, err
		}
		last, err = strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("store: corrupt sequence: %w", err)
		}
	}
	next := last + 1
	if err := p.d.Write(seqKey, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	return template.ID(next), nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `templates-id`
func toKey(id template.ID) string {
	return fmt.Sprintf("%s-%s", templatesPrefix, id)
}

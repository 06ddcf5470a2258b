package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/tmpl/pkg/template"
)

// EventType describes a change seen under a store's base path.
type EventType int

const (
	// EventTemplateChanged reports that one template file was written or
	// removed.
	EventTemplateChanged EventType = iota

	// EventInvalidated reports a change that could not be tied to a single
	// template, such as the id sequence or a watcher error.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventTemplateChanged:
		return "template-changed"
	case EventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Event is emitted by Watcher.Watch when storage changes on disk.
type Event struct {
	Type EventType
	ID   template.ID
}

// Watcher is implemented by backends whose files may be changed by another
// process. Watching drops cached reads on every change.
type Watcher interface {
	Watch(ctx context.Context, logger *slog.Logger) (<-chan Event, error)
}

var _ Watcher = (*persistence)(nil)

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel; events are dropped rather than blocking the watcher. The
// channel is closed once ctx is done or the watcher fails. Watcher errors are
// reported to logger, which may be nil.
func (p *persistence) Watch(ctx context.Context, logger *slog.Logger) (<-chan Event, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}

	closeWatcher := func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("closing store watcher", "path", p.basePath, "error", err)
		}
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer closeWatcher()
		p.consume(ctx, watcher.Events, watcher.Errors, watcher.Add, dirs, events, logger)
	}()

	return events, nil
}

// consume turns filesystem notifications into coalesced Events on out until
// ctx is done or either source closes. add subscribes to directories created
// later. Nothing is sent on out after consume returns.
func (p *persistence) consume(ctx context.Context, fsEvents <-chan fsnotify.Event, fsErrors <-chan error,
	add func(string) error, dirs []string, out chan<- Event, logger *slog.Logger) {
	watched := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		watched[dir] = struct{}{}
	}

	send := func(ev Event) {
		select {
		case out <- ev:
		default:
		}
	}

	throttle := newEventThrottle(100 * time.Millisecond)
	defer throttle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case werr, ok := <-fsErrors:
			if !ok {
				return
			}
			logger.Warn("store watcher error", "path", p.basePath, "error", werr)
			p.invalidate()
			throttle.Enqueue(Event{Type: EventInvalidated}, send)
		case evt, ok := <-fsEvents:
			if !ok {
				return
			}
			if evt.Op&fsnotify.Create == fsnotify.Create {
				// diskv creates the templates directory on first write.
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					dir := filepath.Clean(evt.Name)
					if _, found := watched[dir]; !found {
						if err := add(dir); err != nil {
							logger.Warn("store watcher could not follow directory", "path", dir, "error", err)
						} else {
							watched[dir] = struct{}{}
						}
					}
					continue
				}
			}
			p.invalidate()
			throttle.Enqueue(p.eventForPath(evt.Name), send)
		}
	}
}

// invalidate drops every cached read by starting over with a fresh cache.
func (p *persistence) invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.d = diskv.New(p.d.Options)
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventForPath maps a diskv file back to the template it stores.
func (p *persistence) eventForPath(path string) Event {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil {
		return Event{Type: EventInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 2 || parts[0] != templatesPrefix {
		return Event{Type: EventInvalidated}
	}
	id, err := template.ParseID(parts[1])
	if err != nil {
		return Event{Type: EventInvalidated}
	}
	return Event{Type: EventTemplateChanged, ID: id}
}

// eventThrottle coalesces bursts of notifications; one diskv write produces
// several filesystem events.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
	stopped bool
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

// flush sends while holding mu, so once Stop has returned no send can follow
// and the caller may close the channel behind send. send must not block.
func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	if t.stopped {
		return
	}
	for ev := range pending {
		send(ev)
	}
}

// Stop cancels any pending flush. A flush already running finishes before Stop
// returns; later flushes send nothing.
func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

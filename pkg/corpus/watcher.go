package corpus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives the paths of recognized files that were created
// or written in the watched directory during one debounce window. A file
// renamed into the directory arrives as a create.
type ChangeHandler func(paths []string)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is how long to wait for further events before calling the
	// handler. Default: 250ms
	Debounce time.Duration

	// Extensions recognized as sources. Default: DefaultExtensions
	Extensions []string
}

// Watcher watches a sources directory and batches file changes.
//
// Removals are logged and otherwise ignored: a source that has been loaded
// stays registered until the process exits.
type Watcher struct {
	dir        string
	watcher    *fsnotify.Watcher
	handler    ChangeHandler
	debounce   time.Duration
	extensions []string

	changes  chan string
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for dir. Call Start to begin watching.
func NewWatcher(dir string, handler ChangeHandler, opts WatcherOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		dir:        dir,
		watcher:    fw,
		handler:    handler,
		debounce:   opts.Debounce,
		extensions: opts.Extensions,
		changes:    make(chan string, 256),
		done:       make(chan struct{}),
	}, nil
}

// Start adds the directory and spawns the event and debounce loops. Both
// exit when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	log.Debugf("Watching sources dir %s", w.dir)
	return nil
}

// Stop stops watching and waits for the loops to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !Recognized(event.Name, w.extensions) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Warnf("Source file %s was removed; it stays loaded until restart", event.Name)
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			select {
			case w.changes <- event.Name:
			default:
				log.Warnf("Change buffer full, dropping event for %s", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)
		w.handler(paths)
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.done:
			timer.Stop()
			return
		case path := <-w.changes:
			pending[path] = struct{}{}
			timer.Reset(w.debounce)
		case <-timer.C:
			flush()
		}
	}
}

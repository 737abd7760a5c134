package internal

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a newly created file must sit unmodified before it
// is announced. Cameras and sync clients write large files in chunks; acting
// on the create event alone would process half-written media.
const settleDelay = 2 * time.Second

// Watcher wraps fsnotify with media-extension filtering and write settling.
// It emits the paths of new media files once they stop growing.
type Watcher struct {
	watcher *fsnotify.Watcher
	cfg     *Config
	log     *Logger
	events  chan string
	errors  chan error
	done    chan struct{}
}

// NewWatcher watches sourceDir recursively for incoming media files.
func NewWatcher(sourceDir string, cfg *Config, log *Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		cfg:     cfg,
		log:     log,
		events:  make(chan string, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}

	if err := w.addRecursive(sourceDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

// addRecursive adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			// new subdirectories join the watch set
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := w.addRecursive(event.Name); err != nil {
					w.log.Warn("failed to watch %s: %v", event.Name, err)
				}
				continue
			}
			ext := strings.ToLower(filepath.Ext(event.Name))
			if !allowlisted(ext, w.cfg.Extensions("")) {
				continue
			}
			go w.announceWhenSettled(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}

		case <-w.done:
			return
		}
	}
}

// announceWhenSettled waits for the file's size to hold steady across one
// settle interval, then emits it.
func (w *Watcher) announceWhenSettled(path string) {
	var lastSize int64 = -1
	for {
		select {
		case <-w.done:
			return
		case <-time.After(settleDelay):
		}

		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == lastSize {
			select {
			case w.events <- path:
			default:
				w.log.Warn("event queue full, dropping %s", path)
			}
			return
		}
		lastSize = info.Size()
	}
}

// Events returns the channel of settled media file paths.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and cleans up resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

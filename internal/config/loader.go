package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Store reads a YAML config file and, optionally, watches it for
// changes. It hands out a read-only snapshot that the dispatcher
// acquires once per batch and releases when done.
type Store struct {
	path       string
	logger     *slog.Logger
	mu         sync.RWMutex
	current    *RuleConfig
	onChange   []func(*RuleConfig)
	watcher    *fsnotify.Watcher
	outstanding atomic.Int64
}

// Handle is a scoped acquisition of a configuration snapshot, mirroring
// the original C code's get_multipath_config()/put_multipath_config()
// pair. Callers must defer Release() immediately after Acquire().
type Handle struct {
	cfg     *RuleConfig
	release func()
}

// Config returns the acquired snapshot.
func (h *Handle) Config() *RuleConfig { return h.cfg }

// Release must be called exactly once, on every exit path of the scope
// that acquired the handle.
func (h *Handle) Release() {
	if h.release != nil {
		h.release()
		h.release = nil
	}
}

// NewStore creates a Store and performs the initial load and
// validation.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current = cfg
	return s, nil
}

// Acquire returns a scoped Handle on the current configuration
// snapshot. The snapshot itself is immutable once acquired; a
// concurrent Reload swaps s.current without mutating any
// already-acquired *RuleConfig.
func (s *Store) Acquire() *Handle {
	s.mu.RLock()
	cfg := s.current
	s.mu.RUnlock()
	s.outstanding.Add(1)
	return &Handle{
		cfg: cfg,
		release: func() {
			s.outstanding.Add(-1)
		},
	}
}

// Outstanding returns the number of acquired-but-not-yet-released
// handles; used by tests to assert scoped acquisition never leaks.
func (s *Store) Outstanding() int64 {
	return s.outstanding.Load()
}

// OnChange registers a callback invoked whenever the config reloads.
func (s *Store) OnChange(fn func(*RuleConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on
// file writes. Call the returned stop function to clean up.
func (s *Store) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", s.path, err)
	}
	s.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := s.Reload(); err != nil {
						s.logger.Warn("config hot-reload skipped", "err", err)
					}
				}
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("config watcher error", "err", werr)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read and re-validation of the config
// file. On success the new snapshot becomes current and every OnChange
// callback fires; on failure the previous snapshot is kept in effect.
func (s *Store) Reload() (*RuleConfig, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = cfg
	callbacks := make([]func(*RuleConfig), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (s *Store) load() (*RuleConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	}
	var cfg RuleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package configmgr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"racket/internal/common/fsutil"
)

// Options configures a Manager. Zero values select the package defaults.
type Options struct {
	// Root is the installation root. Empty means the current directory.
	Root string
	// FileName of the configuration document inside Root.
	FileName string
	// Template written by Init; Placeholder occurrences are replaced by the identifier.
	Template    string
	Placeholder string
	// Logger defaults to the zerolog global logger.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Defaults to a no-op.
	Publisher EventPublisher
}

// Manager owns one YAML configuration file for an installation root.
type Manager struct {
	root        string
	fileName    string
	template    string
	placeholder string
	log         zerolog.Logger
	pub         EventPublisher

	mu     sync.RWMutex
	cached Record
	// size and modification time of the file behind cached
	loadedSize int64
	loadedMod  time.Time
}

// New constructs a Manager. No file system access happens here.
func New(opts Options) *Manager {
	root := opts.Root
	if exp, err := fsutil.ExpandHome(root); err == nil {
		root = exp
	}
	m := &Manager{
		root:        root,
		fileName:    opts.FileName,
		template:    opts.Template,
		placeholder: opts.Placeholder,
		pub:         opts.Publisher,
	}
	if m.fileName == "" {
		m.fileName = DefaultFileName
	}
	if m.template == "" {
		m.template = DefaultTemplate
	}
	if m.placeholder == "" {
		m.placeholder = DefaultPlaceholder
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	m.log = base.With().Str("component", "configmgr").Logger()
	return m
}

// Root returns the installation root as configured (after ~ expansion).
func (m *Manager) Root() string { return m.root }

// FileName returns the configuration file name.
func (m *Manager) FileName() string { return m.fileName }

// SetEventPublisher installs an event sink. Nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.pub = p
	m.mu.Unlock()
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.pub
	m.mu.RUnlock()
	p.Publish(e)
}

// CreateDir ensures dir exists. Failures (permission denied, a file in the
// way) are logged and reported through the return value only.
func (m *Manager) CreateDir(dir string) bool {
	if fsutil.IsDir(dir) {
		return true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Error().Err(err).Str("dir", dir).Msg("could not create config directory")
		m.publish(Event{Name: EventDirFailed, Path: dir, Fields: map[string]any{"error": err.Error()}})
		return false
	}
	return true
}

// FilePath returns the location of the configuration file.
func (m *Manager) FilePath() string {
	base := m.root
	if base == "" {
		base = "."
	}
	return filepath.Join(base, m.fileName)
}

// IsInitialized reports whether the configuration file exists.
func (m *Manager) IsInitialized() bool {
	return fsutil.IsFile(m.FilePath())
}

// Init creates the configuration file from the template unless it already
// exists. Calling it again is a no-op.
func (m *Manager) Init(identifier string) error {
	return m.Set(identifier)
}

// Set loads the configuration file into the manager's cache, resolving
// saved-models against the root.
//
// With a non-empty identifier Set first creates the file from the template; if
// the file already exists it returns immediately and leaves both the file and
// the cache untouched. With an empty identifier the file must already exist.
func (m *Manager) Set(identifier string) error {
	path := m.FilePath()
	if identifier != "" && fsutil.IsFile(path) {
		m.log.Debug().Str("path", path).Msgf("%s file already present", m.fileName)
		m.publish(Event{Name: EventExists, Path: path})
		return nil
	}
	if identifier != "" {
		m.CreateDir(filepath.Dir(path))
		body := m.template
		if m.placeholder != "" {
			body = strings.ReplaceAll(body, m.placeholder, identifier)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		m.log.Info().Str("path", path).Str("identifier", identifier).Msg("config initialized")
		m.publish(Event{Name: EventInit, Path: path, Fields: map[string]any{"identifier": identifier}})
	}

	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	rec, err := m.read(path)
	if err != nil {
		return err
	}
	if rec == nil {
		return invalidConfigError{path: path, msg: "empty document"}
	}
	raw, ok := rec.SavedModels()
	if !ok {
		return invalidConfigError{path: path, msg: "missing " + KeySavedModels}
	}
	rec[KeySavedModels] = resolvePath(m.root, raw)

	m.mu.Lock()
	m.cached = rec
	m.loadedSize, m.loadedMod = fi.Size(), fi.ModTime()
	m.mu.Unlock()
	m.publish(Event{Name: EventLoaded, Path: path, Fields: map[string]any{KeySavedModels: rec[KeySavedModels]}})
	return nil
}

// Reload re-reads the configuration file into the cache.
func (m *Manager) Reload() error { return m.Set("") }

// Cached returns a copy of the record loaded by the last successful Set.
func (m *Manager) Cached() (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cached == nil {
		return nil, false
	}
	return m.cached.Clone(), true
}

// SavedModelsDir returns the resolved saved-models directory from the cache.
func (m *Manager) SavedModelsDir() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cached == nil {
		return "", false
	}
	return m.cached.SavedModels()
}

// CurrentSavedModelsDir is SavedModelsDir for long-running callers: when the
// file exists and differs in size or modification time from the last load (or
// was never loaded), it is reloaded first. A failed reload is logged and the
// previous cache is used.
func (m *Manager) CurrentSavedModelsDir() (string, bool) {
	fi, err := os.Stat(m.FilePath())
	if err == nil && fi.Mode().IsRegular() {
		m.mu.RLock()
		stale := m.cached == nil || fi.Size() != m.loadedSize || !fi.ModTime().Equal(m.loadedMod)
		m.mu.RUnlock()
		if stale {
			if err := m.Reload(); err != nil {
				m.log.Warn().Err(err).Str("path", m.FilePath()).Msg("config reload failed")
			}
		}
	}
	return m.SavedModelsDir()
}

// Get re-reads the configuration file and returns it as stored, without
// resolving saved-models. ok is false when the file does not exist or holds an
// empty document; parse and read failures are returned as errors.
func (m *Manager) Get() (Record, bool, error) {
	if !m.IsInitialized() {
		return nil, false, nil
	}
	rec, err := m.read(m.FilePath())
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec, true, nil
}

// Value returns a single top-level entry of the configuration file. A missing
// key is logged as a warning; a missing file is silent. Both report ok=false.
func (m *Manager) Value(key string) (any, bool, error) {
	rec, ok, err := m.Get()
	if err != nil || !ok || len(rec) == 0 {
		return nil, false, err
	}
	v, ok := rec[key]
	if !ok {
		m.log.Warn().Str("path", m.FilePath()).Str("key", key).Msgf("config %s has no key %s", m.fileName, key)
		m.publish(Event{Name: EventMissingKey, Path: m.FilePath(), Fields: map[string]any{"key": key}})
		return nil, false, nil
	}
	return v, true, nil
}

// ActiveModel returns the model currently selected for inference.
func (m *Manager) ActiveModel() (string, bool, error) {
	v, ok, err := m.Value(KeyActiveModel)
	if err != nil || !ok {
		return "", false, err
	}
	name, ok := Record{KeyActiveModel: v}.ActiveModel()
	return name, ok, nil
}

func (m *Manager) read(path string) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var rec Record
	if err := yaml.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for k, v := range rec {
		rec[k] = normalize(v)
	}
	return rec, nil
}

// normalize turns the map[any]any yaml.v3 produces for mappings with
// non-string keys into map[string]any, recursively, so records stay
// JSON-encodable.
func normalize(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}
		return out
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

// resolvePath joins raw onto root the way a path join does: an absolute raw
// value wins. The result is made absolute.
func resolvePath(root, raw string) string {
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	base := root
	if base == "" {
		base = "."
	}
	p := filepath.Join(base, raw)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

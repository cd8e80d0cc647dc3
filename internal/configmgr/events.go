package configmgr

// Event names published by Manager.
const (
	EventInit       = "config_init"
	EventExists     = "config_exists"
	EventLoaded     = "config_loaded"
	EventMissingKey = "config_missing_key"
	EventDirFailed  = "config_dir_failed"
)

// Event represents a configuration lifecycle event.
// Minimal and stable: name + file path and optional fields via key/values.
type Event struct {
	Name   string
	Path   string
	Fields map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

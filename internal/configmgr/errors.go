package configmgr

// noActiveModelError reports that the configuration selects no model.
type noActiveModelError struct{ path string }

func (e noActiveModelError) Error() string {
	if e.path == "" {
		return "no active model selected"
	}
	return "no active model selected in " + e.path
}

// ErrNoActiveModel constructs the error returned when active-model is absent.
func ErrNoActiveModel(path string) error { return noActiveModelError{path: path} }

// IsNoActiveModel reports whether err indicates that no active model is configured.
func IsNoActiveModel(err error) bool {
	_, ok := err.(noActiveModelError)
	return ok
}

// invalidConfigError signals a document that parsed but is unusable.
type invalidConfigError struct {
	path string
	msg  string
}

func (e invalidConfigError) Error() string { return "invalid config " + e.path + ": " + e.msg }

// IsInvalidConfig reports whether err indicates a structurally invalid document.
func IsInvalidConfig(err error) bool {
	_, ok := err.(invalidConfigError)
	return ok
}

package configmgr

import (
	"fmt"
	"strings"
)

// Well-known keys of the configuration document.
const (
	KeyInstallationRoot = "installation-root"
	KeySavedModels      = "saved-models"
	KeyActiveModel      = "active-model"
)

// Record is a decoded configuration document. Keys other than the well-known
// ones are passed through untouched.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value at key when it is a non-blank scalar.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case int, int64, float64, bool:
		s = fmt.Sprint(x)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// SavedModels returns the saved-models entry.
func (r Record) SavedModels() (string, bool) { return r.String(KeySavedModels) }

// ActiveModel returns the active-model entry.
func (r Record) ActiveModel() (string, bool) { return r.String(KeyActiveModel) }

// Package configmgr manages the YAML configuration file of a racket
// installation. It is structured into small files by concern:
//
//   - manager.go: Manager type, construction and the file lifecycle
//     (CreateDir, FilePath, IsInitialized, Init, Set, Reload, Get, Value).
//   - record.go: Record, the decoded document, and its well-known keys.
//   - template.go: the document written on first initialization.
//   - errors.go: typed errors and Is* helpers.
//   - events.go / eventpub_memory.go: lifecycle events and publishers.
//
// Set caches a copy of the document whose saved-models entry has been resolved
// against the installation root. Get always re-reads the file and returns the
// stored value untouched, so the two disagree on saved-models whenever the root
// is non-empty. Callers that need the resolved path use Cached or
// SavedModelsDir; long-running callers use CurrentSavedModelsDir, which
// reloads the cache when the file has changed on disk.
//
// File reads and writes are not locked. Concurrent writers from several
// processes interleave and the last write wins.
package configmgr

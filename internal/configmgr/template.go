package configmgr

// DefaultPlaceholder is the service name in DefaultTemplate that Init replaces
// with the caller's identifier.
const DefaultPlaceholder = "racket-server"

// DefaultFileName is the configuration file name used when Options.FileName is empty.
const DefaultFileName = "racket.yaml"

// DefaultTemplate is written on first initialization.
const DefaultTemplate = `# racket configuration
name: racket-server
serving:
  host: localhost
  port: 8501
saved-models: models
# active-model: <model-name>
`

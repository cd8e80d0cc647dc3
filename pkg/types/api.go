package types

import "encoding/json"

// InferRequest represents an inference request payload.
type InferRequest struct {
	// Nested numeric array passed to the active model as-is.
	// example: [[1,2,3]]
	Input json.RawMessage `json:"input" swaggertype:"array,number" example:"[[1,2,3]]"`
}

// InferResponse carries the predictor output converted to nested lists.
type InferResponse struct {
	// Nested numeric array produced by the model.
	// example: [[0.9,0.1]]
	Predictions any `json:"predictions" swaggertype:"array,number"`
}

// Model represents a model stored under the saved-models directory.
type Model struct {
	// Stable identifier for the model (directory or file name).
	// example: resnet
	ID string `json:"id" example:"resnet"`
	// Human-friendly name.
	// example: resnet
	Name string `json:"name" example:"resnet"`
	// Absolute path on disk.
	// example: /srv/racket/models/resnet
	Path string `json:"path" example:"/srv/racket/models/resnet"`
	// "dir" for a versioned model directory, "file" for a single model file.
	// example: dir
	Kind string `json:"kind" example:"dir"`
	// True when this model is the configured active model.
	// example: true
	Active bool `json:"active" example:"true"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ConfigResponse is returned by GET /config.
type ConfigResponse struct {
	// Location of the configuration file.
	// example: /srv/racket/racket.yaml
	Path string `json:"path" example:"/srv/racket/racket.yaml"`
	// Document as stored on disk.
	Config map[string]any `json:"config"`
}

// ConfigValueResponse is returned by GET /config/{key}.
type ConfigValueResponse struct {
	// example: active-model
	Key string `json:"key" example:"active-model"`
	// example: resnet
	Value any `json:"value"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

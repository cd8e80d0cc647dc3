// Package predictor contains the model backends that turn an input tensor into
// predictions for a named model.
//
// Two backends exist: ServerTarget speaks the TensorFlow Serving REST predict
// API over HTTP, and LlamaTarget computes token embeddings in-process through
// llama.cpp (only with the 'llama' build tag). Instrument wraps either one with
// Prometheus metrics.
package predictor

import (
	"context"

	"racket/internal/tensor"
)

// Predictor runs a model on an input tensor.
type Predictor interface {
	// Predict evaluates model on input. Implementations must return when ctx is canceled.
	Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error)
}

// Result is the output of a prediction.
type Result struct {
	Result tensor.Tensor
}

// Func adapts an ordinary function to the Predictor interface.
type Func func(ctx context.Context, model string, input tensor.Tensor) (Result, error)

func (f Func) Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error) {
	return f(ctx, model, input)
}

//go:build !llama

package predictor

// This file provides a no-CGO stub for the llama backend. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds CGO-free.

import (
	"context"

	"racket/internal/tensor"
)

// LlamaBuilt indicates this binary was compiled with real llama support.
const LlamaBuilt = false

// LlamaTarget is a stub that refuses to run without the 'llama' build tag.
type LlamaTarget struct {
	modelsDir func() (string, bool)
	ctxSize   int
	threads   int
}

func NewLlamaTarget(modelsDir func() (string, bool), ctxSize, threads int) *LlamaTarget {
	return &LlamaTarget{modelsDir: modelsDir, ctxSize: ctxSize, threads: threads}
}

func (t *LlamaTarget) Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}
	return Result{}, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (t *LlamaTarget) Close() error { return nil }

//go:build llama

package predictor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"racket/internal/tensor"
)

// LlamaBuilt indicates this binary was compiled with real llama support.
const LlamaBuilt = true

// LlamaTarget computes token embeddings with an in-process llama.cpp model
// loaded from <saved-models>/<model>. Each input row is a sequence of token
// ids; each output row is that sequence's embedding.
type LlamaTarget struct {
	modelsDir func() (string, bool)
	ctxSize   int
	threads   int

	mu     sync.Mutex
	models map[string]*llama.LLama
}

// NewLlamaTarget constructs an embedding predictor. modelsDir reports the
// resolved saved-models directory.
func NewLlamaTarget(modelsDir func() (string, bool), ctxSize, threads int) *LlamaTarget {
	return &LlamaTarget{modelsDir: modelsDir, ctxSize: ctxSize, threads: threads, models: make(map[string]*llama.LLama)}
}

func (t *LlamaTarget) load(path string) (*llama.LLama, error) {
	if m, ok := t.models[path]; ok {
		return m, nil
	}
	mo := []llama.ModelOption{llama.EnableEmbeddings}
	if t.ctxSize > 0 {
		mo = append(mo, llama.SetContext(t.ctxSize))
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	t.models[path] = m
	return m, nil
}

// Predict embeds every row of input. Calls are serialized; llama contexts are not reentrant.
func (t *LlamaTarget) Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error) {
	if strings.TrimSpace(model) == "" {
		return Result{}, errors.New("llama: empty model name")
	}
	dir, ok := t.modelsDir()
	if !ok {
		return Result{}, ErrDependencyUnavailable("llama: saved-models directory not loaded")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, err := t.load(filepath.Join(dir, model))
	if err != nil {
		return Result{}, err
	}
	threads := t.threads
	if threads < 1 {
		threads = 1
	}
	rows := input.Rows()
	out := make([][]float64, 0, len(rows))
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		tokens := make([]int, len(r))
		for i, v := range r {
			tokens[i] = int(v)
		}
		emb, err := m.TokenEmbeddings(tokens, llama.SetThreads(threads))
		if err != nil {
			return Result{}, fmt.Errorf("llama embeddings: %w", err)
		}
		row := make([]float64, len(emb))
		for i, v := range emb {
			row[i] = float64(v)
		}
		out = append(out, row)
	}
	res, err := tensor.Matrix(out)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: res}, nil
}

// Close frees every loaded model.
func (t *LlamaTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, m := range t.models {
		m.Free()
		delete(t.models, k)
	}
	return nil
}

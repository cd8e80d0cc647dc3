// Package inference resolves the active model from the installation's
// configuration and runs predictions against it.
package inference

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"racket/internal/configmgr"
	"racket/internal/predictor"
	"racket/internal/registry"
	"racket/internal/tensor"
	"racket/pkg/types"
)

// ConfigSource is the part of configmgr.Manager the service reads.
type ConfigSource interface {
	ActiveModel() (string, bool, error)
	Get() (configmgr.Record, bool, error)
	Value(key string) (any, bool, error)
	IsInitialized() bool
	FilePath() string
	CurrentSavedModelsDir() (string, bool)
}

// Service implements the operations behind the HTTP API.
type Service struct {
	cfg  ConfigSource
	pred predictor.Predictor
	log  zerolog.Logger
}

// New wires a configuration source and a predictor.
func New(cfg ConfigSource, pred predictor.Predictor) *Service {
	return &Service{cfg: cfg, pred: pred, log: log.With().Str("component", "inference").Logger()}
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(l zerolog.Logger) {
	s.log = l.With().Str("component", "inference").Logger()
}

// Infer runs input through the active model. The active model is looked up on
// every call so edits to the configuration file apply without a restart.
func (s *Service) Infer(ctx context.Context, input tensor.Tensor) (tensor.Tensor, error) {
	name, ok, err := s.cfg.ActiveModel()
	if err != nil {
		return tensor.Tensor{}, fmt.Errorf("resolve active model: %w", err)
	}
	if !ok {
		return tensor.Tensor{}, configmgr.ErrNoActiveModel(s.cfg.FilePath())
	}
	s.log.Debug().Str("model", name).Ints("shape", input.Shape()).Msg("predict")
	res, err := s.pred.Predict(ctx, name, input)
	if err != nil {
		return tensor.Tensor{}, err
	}
	return res.Result, nil
}

// Config returns the configuration document as stored and its path.
func (s *Service) Config() (configmgr.Record, string, bool, error) {
	rec, ok, err := s.cfg.Get()
	return rec, s.cfg.FilePath(), ok, err
}

// Value returns one top-level configuration entry.
func (s *Service) Value(key string) (any, bool, error) {
	return s.cfg.Value(key)
}

// ListModels returns the models under the resolved saved-models directory,
// flagging the active one. The directory follows edits to the configuration
// file; without a loadable file the list is empty.
func (s *Service) ListModels() ([]types.Model, error) {
	dir, ok := s.cfg.CurrentSavedModelsDir()
	if !ok {
		return []types.Model{}, nil
	}
	models, err := registry.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	active, _, err := s.cfg.ActiveModel()
	if err != nil {
		return nil, err
	}
	return registry.MarkActive(models, active), nil
}

// Ready reports whether the installation has a configuration file.
func (s *Service) Ready() bool { return s.cfg.IsInitialized() }

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"racket/internal/config"
	"racket/internal/configmgr"
	"racket/internal/httpapi"
	"racket/internal/inference"
	"racket/internal/predictor"
)

const shutdownTimeout = 5 * time.Second

// daemon bundles the HTTP server with the resources it owns.
type daemon struct {
	srv    *http.Server
	mgr    *configmgr.Manager
	cancel context.CancelFunc
	close  func() error
}

func (d *daemon) shutdown(ctx context.Context) error {
	// Cancel in-flight inference first so handlers unblock.
	d.cancel()
	err := d.srv.Shutdown(ctx)
	if cerr := d.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// reload re-reads the configuration file into the cache.
func (d *daemon) reload() {
	if !d.mgr.IsInitialized() {
		log.Warn().Str("path", d.mgr.FilePath()).Msg("reload skipped; installation not initialized")
		return
	}
	if err := d.mgr.Reload(); err != nil {
		log.Error().Err(err).Str("path", d.mgr.FilePath()).Msg("config reload failed")
		return
	}
	log.Info().Str("path", d.mgr.FilePath()).Msg("config reloaded")
}

func newPredictor(cfg config.Config, mgr *configmgr.Manager) (predictor.Predictor, func() error, error) {
	switch cfg.Predictor {
	case config.PredictorServer:
		st := predictor.NewServerTarget(predictor.ServerOptions{
			BaseURL:        cfg.PredictorURL,
			SignatureName:  cfg.SignatureName,
			APIKey:         cfg.PredictorAPIKey,
			RequestTimeout: time.Duration(cfg.PredictorTimeoutSeconds) * time.Second,
		})
		return predictor.Instrument(st, config.PredictorServer), func() error { return nil }, nil
	case config.PredictorLlama:
		if !predictor.LlamaBuilt {
			log.Warn().Msg("llama predictor selected but binary built without the 'llama' tag; /infer will return 503")
		}
		lt := predictor.NewLlamaTarget(mgr.CurrentSavedModelsDir, cfg.LlamaCtx, cfg.LlamaThreads)
		return predictor.Instrument(lt, config.PredictorLlama), lt.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown predictor %q", cfg.Predictor)
	}
}

// newDaemon wires the configuration manager, predictor and HTTP API.
func newDaemon(cfg config.Config) (*daemon, error) {
	mgr := newConfigManager(cfg)
	if mgr.IsInitialized() {
		if err := mgr.Reload(); err != nil {
			return nil, fmt.Errorf("load %s: %w", mgr.FilePath(), err)
		}
	} else {
		log.Warn().Str("path", mgr.FilePath()).Msg("installation not initialized; run 'racket init' first")
	}

	pred, closeFn, err := newPredictor(cfg, mgr)
	if err != nil {
		return nil, err
	}
	svc := inference.New(mgr, pred)
	svc.SetLogger(log.Logger)

	httpapi.SetLogger(log.Logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetInferTimeoutSeconds(cfg.InferTimeoutSeconds)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)
	httpapi.SetRequestLogLevel(cfg.RequestLogLevel)

	baseCtx, cancel := context.WithCancel(context.Background())
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	return &daemon{srv: srv, mgr: mgr, cancel: cancel, close: closeFn}, nil
}

// serve runs the daemon until ctx is canceled or the listener fails.
func serve(ctx context.Context, cfg config.Config) error {
	d, err := newDaemon(cfg)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		d.cancel()
		_ = d.close()
		return err
	}
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("config", d.mgr.FilePath()).
		Str("predictor", cfg.Predictor).
		Msg("racket listening")

	errCh := make(chan error, 1)
	go func() { errCh <- d.srv.Serve(ln) }()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

loop:
	for {
		select {
		case err := <-errCh:
			d.cancel()
			_ = d.close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-hup:
			d.reload()
		case <-ctx.Done():
			break loop
		}
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	log.Info().Msg("racket stopped")
	return nil
}

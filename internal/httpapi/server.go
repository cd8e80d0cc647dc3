package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"racket/internal/configmgr"
	"racket/internal/tensor"
	"racket/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Infer(ctx context.Context, input tensor.Tensor) (tensor.Tensor, error)
	Config() (configmgr.Record, string, bool, error)
	Value(key string) (any, bool, error)
	ListModels() ([]types.Model, error)
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/models", modelsHandler(svc))
	r.Get("/config", configHandler(svc))
	r.Get("/config/{key}", configValueHandler(svc))

	infer := inferHandler(svc)
	r.Post("/infer", infer)
	r.Post("/infer/", infer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not initialized"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// modelsHandler godoc
//
//	@Summary	List models under the saved-models directory
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	types.ModelsResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/models [get]
func modelsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models, err := svc.ListModels()
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	}
}

// configHandler godoc
//
//	@Summary	Show the configuration document as stored
//	@Tags		config
//	@Produce	json
//	@Success	200	{object}	types.ConfigResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/config [get]
func configHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, path, ok, err := svc.Config()
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		if !ok {
			writeJSONError(w, http.StatusNotFound, "config not initialized or empty: "+path)
			return
		}
		writeJSON(w, http.StatusOK, types.ConfigResponse{Path: path, Config: rec})
	}
}

// configValueHandler godoc
//
//	@Summary	Show one top-level configuration value
//	@Tags		config
//	@Produce	json
//	@Param		key	path		string	true	"Configuration key"
//	@Success	200	{object}	types.ConfigValueResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/config/{key} [get]
func configValueHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		v, ok, err := svc.Value(key)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		if !ok {
			writeJSONError(w, http.StatusNotFound, "config key not found: "+key)
			return
		}
		writeJSON(w, http.StatusOK, types.ConfigValueResponse{Key: key, Value: v})
	}
}

// inferHandler godoc
//
//	@Summary		Run the active model
//	@Description	The body must be application/json (else 415) with a non-null "input" (else 400).
//	@Description	The input array is not otherwise validated: arrays the predictor cannot use,
//	@Description	ragged or non-numeric arrays and a missing active model all answer 500.
//	@Tags			inference
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.InferRequest	true	"Input array"
//	@Success		200		{object}	types.InferResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		415		{object}	types.ErrorResponse
//	@Failure		500		{object}	types.ErrorResponse
//	@Router			/infer/ [post]
func inferHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.InferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies also land here; report 400 without size details
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		raw := bytes.TrimSpace(req.Input)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			writeJSONError(w, http.StatusBadRequest, "input is required")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		requestEvent(r, lvl, LevelInfo).Msg("infer start")
		requestEvent(r, lvl, LevelDebug).RawJSON("input", raw).Msg("infer input")

		var nested any
		_ = json.Unmarshal(raw, &nested)
		input, err := tensor.FromNested(nested)
		if err != nil {
			logInferEnd(r, lvl, http.StatusInternalServerError, start, err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if inferTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(inferTimeout)*time.Second)
			defer tcancel()
		}
		out, err := svc.Infer(ctx, input)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			logInferEnd(r, lvl, status, start, err)
			writeJSONError(w, status, err.Error())
			return
		}
		resp := types.InferResponse{Predictions: out.Nested()}
		if z := requestEvent(r, lvl, LevelDebug); z != nil {
			z.Interface("predictions", resp.Predictions).Msg("infer output")
		}
		logInferEnd(r, lvl, http.StatusOK, start, nil)
		writeJSON(w, http.StatusOK, resp)
	}
}

func logInferEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	min := LevelInfo
	if err != nil {
		min = LevelError
	}
	z := requestEvent(r, lvl, min)
	if z == nil {
		return
	}
	z = z.Int("status", status).Dur("dur", time.Since(start))
	if err != nil {
		z = z.Err(err)
	}
	z.Msg("infer end")
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"}
	}
	return opts
}

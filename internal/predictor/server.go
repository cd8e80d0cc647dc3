package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"racket/internal/tensor"
)

// ServerOptions configures a ServerTarget.
type ServerOptions struct {
	// BaseURL of the serving REST API, e.g. http://localhost:8501.
	BaseURL string
	// SignatureName is sent as signature_name when set.
	SignatureName string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// RequestTimeout bounds a whole predict call. Zero means only ctx applies.
	RequestTimeout time.Duration
	// ConnectTimeout bounds dialing. Zero selects 5s.
	ConnectTimeout time.Duration
}

// ServerTarget implements Predictor by talking to a TensorFlow Serving
// compatible REST endpoint (POST /v1/models/{name}:predict).
type ServerTarget struct {
	baseURL       string
	signatureName string
	apiKey        string
	reqTimeout    time.Duration
	httpClient    *http.Client
}

// NewServerTarget constructs a server-backed predictor.
func NewServerTarget(opts ServerOptions) *ServerTarget {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: deadlines are carried by the request context.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &ServerTarget{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		signatureName: opts.SignatureName,
		apiKey:        opts.APIKey,
		reqTimeout:    opts.RequestTimeout,
		httpClient:    cli,
	}
}

// predictRequest is the row ("instances") form of the predict API.
type predictRequest struct {
	SignatureName string `json:"signature_name,omitempty"`
	Instances     any    `json:"instances"`
}

type predictResponse struct {
	Predictions json.RawMessage `json:"predictions"`
	Error       string          `json:"error"`
}

// Predict posts input as instances and returns the predictions array.
func (s *ServerTarget) Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error) {
	if s == nil || s.httpClient == nil {
		return Result{}, errors.New("prediction server target not initialized")
	}
	if strings.TrimSpace(model) == "" {
		return Result{}, errors.New("prediction server: empty model name")
	}
	if s.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
		defer cancel()
	}

	body, err := json.Marshal(predictRequest{SignatureName: s.signatureName, Instances: input.Nested()})
	if err != nil {
		return Result{}, fmt.Errorf("encode instances: %w", err)
	}
	endpoint := s.baseURL + "/v1/models/" + url.PathEscape(model) + ":predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		// Translate context timeouts/cancels
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &ServerError{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
		var pr predictResponse
		if json.Unmarshal(b, &pr) == nil && pr.Error != "" {
			se.Message = pr.Error
		}
		log.Debug().Str("predictor", "server").Str("model", model).Int("status", resp.StatusCode).Msg("predict failed")
		return Result{}, se
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("decode predict response: %w", err)
	}
	if pr.Error != "" {
		return Result{}, &ServerError{Status: resp.StatusCode, Message: pr.Error}
	}
	if len(pr.Predictions) == 0 {
		return Result{}, errors.New("predict response has no predictions")
	}
	var out tensor.Tensor
	if err := json.Unmarshal(pr.Predictions, &out); err != nil {
		return Result{}, fmt.Errorf("decode predictions: %w", err)
	}
	return Result{Result: out}, nil
}

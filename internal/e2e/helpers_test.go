package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"racket/internal/configmgr"
	"racket/internal/httpapi"
	"racket/internal/inference"
	"racket/internal/predictor"
)

// servingStub records which model each predict call targeted and answers with
// one prediction per instance: the instance's sum times the model's weight.
type servingStub struct {
	mu      sync.Mutex
	models  []string
	weights map[string]float64
}

func (s *servingStub) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

func newServingStub(t *testing.T, weights map[string]float64) (*servingStub, *httptest.Server) {
	t.Helper()
	stub := &servingStub{weights: weights}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/v1/models/"):]
		name = name[:len(name)-len(":predict")]
		stub.mu.Lock()
		stub.models = append(stub.models, name)
		weight, ok := stub.weights[name]
		stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error": "Servable not found for request: Latest(` + name + `)"}`))
			return
		}
		var body struct {
			Instances [][]float64 `json:"instances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "bad instances"}`))
			return
		}
		preds := make([][]float64, len(body.Instances))
		for i, row := range body.Instances {
			var sum float64
			for _, v := range row {
				sum += v
			}
			preds[i] = []float64{sum * weight}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": preds})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return stub, srv
}

// newInstallation initializes a racket installation under a temp root and
// returns its manager with the cache loaded.
func newInstallation(t *testing.T, identifier string) *configmgr.Manager {
	t.Helper()
	mgr := configmgr.New(configmgr.Options{Root: t.TempDir(), Publisher: httpapi.ConfigEventCounter{}})
	if err := mgr.Init(identifier); err != nil {
		t.Fatalf("init: %v", err)
	}
	return mgr
}

// setActiveModel appends an active-model entry to the configuration file.
func setActiveModel(t *testing.T, mgr *configmgr.Manager, name string) {
	t.Helper()
	b, err := os.ReadFile(mgr.FilePath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	b = append(b, []byte("active-model: "+name+"\n")...)
	if err := os.WriteFile(mgr.FilePath(), b, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func mkModelDirs(t *testing.T, mgr *configmgr.Manager, names ...string) {
	t.Helper()
	dir, ok := mgr.SavedModelsDir()
	if !ok {
		t.Fatalf("saved-models not cached")
	}
	for _, n := range names {
		if err := os.MkdirAll(filepath.Join(dir, n, "1"), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", n, err)
		}
	}
}

func newServer(t *testing.T, mgr *configmgr.Manager, servingURL string) *httptest.Server {
	t.Helper()
	pred := predictor.Instrument(predictor.NewServerTarget(predictor.ServerOptions{BaseURL: servingURL}), "server")
	svc := inference.New(mgr, pred)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"racket/internal/config"
)

// fakeServing mimics the predict endpoint of a TensorFlow Serving REST API.
func fakeServing(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Instances [][]float64 `json:"instances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		preds := make([][]float64, len(body.Instances))
		for i, row := range body.Instances {
			var sum float64
			for _, v := range row {
				sum += v
			}
			preds[i] = []float64{sum}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": preds})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func testSettings(t *testing.T, predictorURL, content string) config.Config {
	t.Helper()
	root := t.TempDir()
	if content != "" {
		if err := os.WriteFile(filepath.Join(root, "racket.yaml"), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.InstallationRoot = root
	cfg.PredictorURL = predictorURL
	return cfg
}

func TestNewDaemon_ServesInfer(t *testing.T) {
	tf := fakeServing(t)
	cfg := testSettings(t, tf.URL, "saved-models: models\nactive-model: summer\n")
	d, err := newDaemon(cfg)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	t.Cleanup(func() { _ = d.shutdown(context.Background()) })
	if dir, ok := d.mgr.SavedModelsDir(); !ok || dir != filepath.Join(cfg.InstallationRoot, "models") {
		t.Fatalf("cache not loaded: %q %v", dir, ok)
	}

	ts := httptest.NewServer(d.srv.Handler)
	defer ts.Close()
	resp, err := http.Post(ts.URL+"/infer/", "application/json", strings.NewReader(`{"input": [[1, 2, 3], [4, 5, 6]]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}
	if strings.TrimSpace(string(b)) != `{"predictions":[[6],[15]]}` {
		t.Fatalf("body=%s", b)
	}
}

func TestNewDaemon_InvalidConfigFails(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "active-model: m\n")
	if _, err := newDaemon(cfg); err == nil {
		t.Fatalf("expected error for config without saved-models")
	}
}

func TestNewDaemon_UninitializedStillServes(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "")
	d, err := newDaemon(cfg)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	t.Cleanup(func() { _ = d.shutdown(context.Background()) })
	rec := httptest.NewRecorder()
	d.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz=%d", rec.Code)
	}
}

func TestNewDaemon_PicksUpConfigWrittenAfterStart(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "")
	d, err := newDaemon(cfg)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	t.Cleanup(func() { _ = d.shutdown(context.Background()) })

	root := cfg.InstallationRoot
	if err := os.WriteFile(filepath.Join(root, "racket.yaml"), []byte("saved-models: models\nactive-model: resnet\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "models", "resnet", "1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rec := httptest.NewRecorder()
	d.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/models status=%d", rec.Code)
	}
	var body struct {
		Models []struct {
			ID     string `json:"id"`
			Active bool   `json:"active"`
		} `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 1 || body.Models[0].ID != "resnet" || !body.Models[0].Active {
		t.Fatalf("models=%+v", body.Models)
	}
	if dir, ok := d.mgr.SavedModelsDir(); !ok || dir != filepath.Join(root, "models") {
		t.Fatalf("cache not loaded: %q %v", dir, ok)
	}
}

func TestDaemonReload(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "saved-models: models\n")
	d, err := newDaemon(cfg)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	t.Cleanup(func() { _ = d.shutdown(context.Background()) })
	if err := os.WriteFile(d.mgr.FilePath(), []byte("saved-models: /opt/models\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d.reload()
	if dir, _ := d.mgr.SavedModelsDir(); dir != "/opt/models" {
		t.Fatalf("after reload: %q", dir)
	}
	if err := os.WriteFile(d.mgr.FilePath(), []byte("active-model: m\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d.reload()
	if dir, _ := d.mgr.SavedModelsDir(); dir != "/opt/models" {
		t.Fatalf("failed reload must keep the cache: %q", dir)
	}
}

func TestNewPredictor(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "")
	mgr := newConfigManager(cfg)
	for _, name := range []string{config.PredictorServer, config.PredictorLlama} {
		cfg.Predictor = name
		p, closeFn, err := newPredictor(cfg, mgr)
		if err != nil || p == nil || closeFn == nil {
			t.Fatalf("%s: p=%v err=%v", name, p, err)
		}
		if err := closeFn(); err != nil {
			t.Fatalf("%s close: %v", name, err)
		}
	}
	cfg.Predictor = "onnx"
	if _, _, err := newPredictor(cfg, mgr); err == nil {
		t.Fatalf("expected error for unknown predictor")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "saved-models: models\n")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	cfg := testSettings(t, "http://127.0.0.1:1", "")
	cfg.Addr = "256.0.0.1:bad"
	if err := serve(context.Background(), cfg); err == nil {
		t.Fatalf("expected listen error")
	}
}

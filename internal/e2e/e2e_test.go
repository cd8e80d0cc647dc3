package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"racket/pkg/types"
)

func TestE2E_InferUsesActiveModel(t *testing.T) {
	stub, serving := newServingStub(t, map[string]float64{"doubler": 2})
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "doubler")
	srv := newServer(t, mgr, serving.URL)

	resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [[1, 2], [3, 4]]}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var got types.InferResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, _ := json.Marshal(got.Predictions)
	if string(b) != "[[6],[14]]" {
		t.Fatalf("predictions=%s", b)
	}
	if calls := stub.calls(); len(calls) != 1 || calls[0] != "doubler" {
		t.Fatalf("serving calls=%v", calls)
	}
}

func TestE2E_ActiveModelSwitchAppliesWithoutRestart(t *testing.T) {
	stub, serving := newServingStub(t, map[string]float64{"a": 1, "b": 10})
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "a")
	srv := newServer(t, mgr, serving.URL)

	if resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1]}`)); resp.StatusCode != http.StatusOK {
		t.Fatalf("first infer: %d %s", resp.StatusCode, body)
	}
	setActiveModel(t, mgr, "b")
	resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1]}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second infer: %d %s", resp.StatusCode, body)
	}
	if calls := stub.calls(); len(calls) != 2 || calls[1] != "b" {
		t.Fatalf("serving calls=%v", calls)
	}
}

func TestE2E_NoActiveModelIs500(t *testing.T) {
	stub, serving := newServingStub(t, nil)
	mgr := newInstallation(t, "svc")
	srv := newServer(t, mgr, serving.URL)

	resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1, 2, 3]}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if len(stub.calls()) != 0 {
		t.Fatalf("serving must not be called")
	}
}

func TestE2E_UnknownModelPassesThrough404(t *testing.T) {
	_, serving := newServingStub(t, map[string]float64{})
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "ghost")
	srv := newServer(t, mgr, serving.URL)

	resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1]}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	var e types.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || !strings.Contains(e.Error, "ghost") || e.Code != http.StatusNotFound {
		t.Fatalf("error body=%s", body)
	}
}

func TestE2E_ServingDownIs502(t *testing.T) {
	_, serving := newServingStub(t, nil)
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "m")
	url := serving.URL
	serving.Close()
	srv := newServer(t, mgr, url)

	resp, body := httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1]}`))
	if resp.StatusCode != http.StatusInternalServerError && resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
}

func TestE2E_ModelsAndConfig(t *testing.T) {
	_, serving := newServingStub(t, nil)
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "beta")
	mkModelDirs(t, mgr, "beta", "alpha")
	srv := newServer(t, mgr, serving.URL)

	resp, body := httpGet(t, srv.URL+"/models")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("models status=%d", resp.StatusCode)
	}
	var mr types.ModelsResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(mr.Models) != 2 || mr.Models[0].ID != "alpha" || mr.Models[0].Active || !mr.Models[1].Active {
		t.Fatalf("models=%+v", mr.Models)
	}
	dir, _ := mgr.SavedModelsDir()
	if mr.Models[1].Path != filepath.Join(dir, "beta") {
		t.Fatalf("path=%q", mr.Models[1].Path)
	}

	resp, body = httpGet(t, srv.URL+"/config")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("config status=%d", resp.StatusCode)
	}
	var cr types.ConfigResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	// The endpoint shows the document as stored: saved-models stays relative.
	if cr.Config["saved-models"] != "models" || cr.Config["name"] != "svc" || cr.Path != mgr.FilePath() {
		t.Fatalf("config=%+v", cr)
	}

	resp, body = httpGet(t, srv.URL+"/config/active-model")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"value":"beta"`) {
		t.Fatalf("config value: %d %s", resp.StatusCode, body)
	}
}

func TestE2E_MetricsExposed(t *testing.T) {
	_, serving := newServingStub(t, map[string]float64{"m": 1})
	mgr := newInstallation(t, "svc")
	setActiveModel(t, mgr, "m")
	srv := newServer(t, mgr, serving.URL)
	httpPostJSON(t, srv.URL+"/infer/", []byte(`{"input": [1]}`))

	resp, body := httpGet(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", resp.StatusCode)
	}
	for _, want := range []string{
		`racket_http_requests_total{method="POST",path="/infer/",status="200"}`,
		`racket_predictor_requests_total{backend="server",outcome="ok"}`,
		`racket_config_events_total{event="config_init"}`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestE2E_ConfigWithNonStringKeys(t *testing.T) {
	_, serving := newServingStub(t, nil)
	mgr := newInstallation(t, "svc")
	b, err := os.ReadFile(mgr.FilePath())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b = append(b, []byte("labels: {0: cat, 1: dog}\n")...)
	if err := os.WriteFile(mgr.FilePath(), b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	srv := newServer(t, mgr, serving.URL)

	resp, body := httpGet(t, srv.URL+"/config")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"labels":{"0":"cat","1":"dog"}`) {
		t.Fatalf("/config: %d %s", resp.StatusCode, body)
	}
	resp, body = httpGet(t, srv.URL+"/config/labels")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"value":{"0":"cat","1":"dog"}`) {
		t.Fatalf("/config/labels: %d %s", resp.StatusCode, body)
	}
}

package apidocs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestDocRegisteredAndValid(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var parsed struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]struct {
			Post struct {
				Description string                     `json:"description"`
				Responses   map[string]json.RawMessage `json:"responses"`
			} `json:"post"`
		} `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	if parsed.Info.Title != "racket API" {
		t.Fatalf("title=%q", parsed.Info.Title)
	}
	for _, p := range []string{"/infer/", "/config", "/config/{key}", "/models"} {
		if _, ok := parsed.Paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
	infer := parsed.Paths["/infer/"].Post
	for _, code := range []string{"200", "400", "415", "500"} {
		if _, ok := infer.Responses[code]; !ok {
			t.Fatalf("/infer/ missing response %s", code)
		}
	}
	if !strings.Contains(infer.Description, "else 415") || !strings.Contains(infer.Description, "else 400") {
		t.Fatalf("/infer/ description=%q", infer.Description)
	}
}

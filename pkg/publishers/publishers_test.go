package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
  - id: local-sqs
    type: SQS
    sqs:
      uri: http://localhost:4566/000000000000/relay
      region: us-east-1
      endpoint: " http://localhost:4566 "
      access_key_id: test
      secret_access_key: test
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" {
		t.Fatalf("expected http2 and local-sqs enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != httpDefaultMethod || enabled[0].HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", enabled[0].HTTP)
	}

	sqsCfg, ok := reg.ByID("local-sqs")
	if !ok || sqsCfg.Type != TypeSQS {
		t.Fatalf("local-sqs missing or type not normalised: %#v", sqsCfg)
	}
	if sqsCfg.SQS.Endpoint != "http://localhost:4566" || sqsCfg.SQS.AccessKeyID != "test" {
		t.Fatalf("inline aws connection not decoded: %#v", sqsCfg.SQS)
	}
}

func TestValidatePublisherConfigRejectsIncompleteEntries(t *testing.T) {
	cases := map[string]PublisherConfig{
		"missing id":       {Type: TypeLog},
		"missing type":     {ID: "x"},
		"unknown type":     {ID: "k", Type: "kafka"},
		"missing http":     {ID: "h1", Type: TypeHTTP},
		"missing topic":    {ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		"missing pubsub":   {ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "proj"}},
		"missing region":   {ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		"wrong block only": {ID: "q2", Type: TypeSQS, HTTP: &HTTPPublisherConfig{URL: "https://h"}},
	}
	for name, cfg := range cases {
		if err := validatePublisherConfig(normalizePublisherConfig(cfg)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadRegistryRejectsDuplicatesAndBadFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		return path
	}

	dup := write("dup.yaml", "publishers:\n  - id: a\n    type: log\n  - id: a\n    type: log\n")
	if _, err := LoadRegistry(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if _, err := LoadRegistry(write("empty.json", `{"publishers":[]}`)); err == nil {
		t.Fatalf("expected error for empty publishers list")
	}
	if _, err := LoadRegistry(write("pubs.toml", "x = 1")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}

	reg, err := LoadRegistry(write("pubs.json", `{"publishers":[{"id":"stdout","type":"log"}]}`))
	if err != nil {
		t.Fatalf("LoadRegistry json: %v", err)
	}
	if all := reg.All(); len(all) != 1 || !all[0].EnabledValue() {
		t.Fatalf("unexpected registry contents %#v", all)
	}
	if _, ok := reg.ByID(" stdout "); !ok {
		t.Fatalf("ByID should trim the id")
	}
}

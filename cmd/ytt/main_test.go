package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"array of items", `[{"json": {"url": "a"}}, {"json": {"url": "b"}}]`, 2, false},
		{"array of payloads", `[{"url": "a"}]`, 1, false},
		{"single object", `{"url": "a"}`, 1, false},
		{"empty array", `[]`, 0, false},
		{"empty input", ``, 0, true},
		{"not json", `url=a`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := parseItems([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseItems() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(items) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}

	items, _ := parseItems([]byte(`[{"json": {"url": "a"}}, {"url": "b", "json": {"x": 1}}]`))
	if items[0].JSON["url"] != "a" {
		t.Errorf("item envelope not unwrapped: %+v", items[0])
	}
	if items[1].JSON["url"] != "b" {
		t.Errorf("payload with extra keys should be kept whole: %+v", items[1])
	}
}

func TestRunDescribe(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-describe", "-format", "yaml"}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "name: youtubeTranscript") {
		t.Errorf("unexpected descriptor output %s", stdout.String())
	}
}

func TestRunStrictFailureReportsIndex(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader(`[{"url": ""}]`)
	code := run(context.Background(), []string{"-url", "={{ $json.url }}", "-input", "-"}, stdin, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "item 0") {
		t.Errorf("expected item index in error, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no output, got %s", stdout.String())
	}
}

func TestRunContinueOnFail(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := strings.NewReader(`[{"url": ""}]`)
	code := run(context.Background(), []string{"-continue-on-fail", "-url", "={{ $json.url }}", "-input", "-"}, stdin, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, `"pairedItem"`) || !strings.Contains(out, `"error"`) {
		t.Errorf("expected an error item in output, got %s", out)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-format", "xml"}, nil, &stdout, &stderr); code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestResolveParameter(t *testing.T) {
	item := map[string]any{
		"url":   "https://youtu.be/dQw4w9WgXcQ",
		"id":    "dQw4w9WgXcQ",
		"count": float64(3),
		"video": map[string]any{"meta data": map[string]any{"url": "https://example.com/v"}},
		"list":  []any{"a", "b"},
	}

	tests := []struct {
		name    string
		value   any
		want    any
		wantErr bool
	}{
		{"literal string", "https://youtu.be/x", "https://youtu.be/x", false},
		{"literal braces without prefix", "{{ $json.url }}", "{{ $json.url }}", false},
		{"non-string", 42, 42, false},
		{"dot path", "={{ $json.url }}", "https://youtu.be/dQw4w9WgXcQ", false},
		{"bracket path", `={{ $json["url"] }}`, "https://youtu.be/dQw4w9WgXcQ", false},
		{"nested", `={{ $json.video['meta data'].url }}`, "https://example.com/v", false},
		{"array index", "={{ $json.list[1] }}", "b", false},
		{"keeps type", "={{ $json.count }}", float64(3), false},
		{"mixed text", "=https://www.youtube.com/watch?v={{ $json.id }}", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"missing key", "={{ $json.nope }}", nil, false},
		{"missing key in text", "=x{{ $json.nope }}y", "xy", false},
		{"unterminated", "={{ $json.url", nil, true},
		{"unknown root", "={{ $node.url }}", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveParameter(tt.value, item)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveParameter(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ResolveParameter(%v) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRuntimeGetNodeParameter(t *testing.T) {
	items := []Item{
		NewItem(map[string]any{"url": "a"}),
		NewItem(map[string]any{"url": "b"}),
	}
	rt := NewRuntime(context.Background(), Node{
		Name:       "Youtube Transcript",
		Parameters: map[string]any{"youtubeVideoUrl": "={{ $json.url }}"},
	}, items)

	for i, want := range []string{"a", "b"} {
		got, err := rt.GetNodeParameter("youtubeVideoUrl", i, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("item %d: expected %q, got %v", i, want, got)
		}
	}

	got, err := rt.GetNodeParameter("unset", 0, "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("expected fallback, got %v (%v)", got, err)
	}

	if _, err := rt.GetNodeParameter("youtubeVideoUrl", 2, ""); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestNodeOperationError(t *testing.T) {
	cause := errors.New("boom")
	err := NewNodeOperationError(Node{Name: "n"}, cause, ErrorContext{})
	err.ErrorContext().SetItemIndex(4)

	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}
	wrapped := fmt.Errorf("run: %w", err)
	idx, ok := ItemIndex(wrapped)
	if !ok || idx != 4 {
		t.Errorf("expected item index 4, got %d (%v)", idx, ok)
	}
	if _, ok := ItemIndex(cause); ok {
		t.Error("plain error should carry no item index")
	}

	ee := NewExecutionError(Node{Name: "n"}, err)
	if ee.ItemIndex == nil || *ee.ItemIndex != 4 {
		t.Errorf("expected execution error to carry index 4, got %+v", ee)
	}
	if ee.NodeName != "n" {
		t.Errorf("expected node name n, got %q", ee.NodeName)
	}
	if ee.Message != "boom [item 4]" || ee.Description != "boom" {
		t.Errorf("unexpected message/description %q / %q", ee.Message, ee.Description)
	}
}

type stubNode struct{ name string }

func (s stubNode) Description() NodeTypeDescription { return NodeTypeDescription{Name: s.name} }

func (s stubNode) Execute(ef ExecuteFunctions) ([][]Item, error) {
	return [][]Item{ef.GetInputData()}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubNode{"b"}, stubNode{"a"})

	if err := r.Register(stubNode{"a"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if err := r.Register(stubNode{}); err == nil {
		t.Error("expected unnamed node to fail")
	}
	if _, ok := r.Get("a"); !ok {
		t.Error("expected node a to be registered")
	}

	descs := r.Descriptions()
	if len(descs) != 2 || descs[0].Name != "a" || descs[1].Name != "b" {
		t.Errorf("unexpected descriptions: %+v", descs)
	}
}

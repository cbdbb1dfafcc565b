package youtubetranscript

import (
	"context"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/workflow"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// stubClient serves canned transcripts keyed by URL. URLs listed in fail
// return the mapped error from GetInfo.
type stubClient struct {
	mu      sync.Mutex
	fail    map[string]error
	targets []string
	opts    []transcript.Options
}

func (c *stubClient) factory(_ context.Context, opts transcript.Options) (Session, error) {
	c.mu.Lock()
	c.opts = append(c.opts, opts)
	c.mu.Unlock()
	return stubSession{c}, nil
}

type stubSession struct{ c *stubClient }

func (s stubSession) GetInfo(_ context.Context, target string) (VideoInfo, error) {
	s.c.mu.Lock()
	s.c.targets = append(s.c.targets, target)
	err := s.c.fail[target]
	s.c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return stubInfo{target}, nil
}

type stubInfo struct{ target string }

func (i stubInfo) GetTranscript(context.Context) (any, error) {
	return "transcript of " + i.target, nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestNode(c *stubClient) *Node {
	return New(WithSessionFactory(c.factory), WithLogger(quietLogger()))
}

func itemsFor(urls ...string) []workflow.Item {
	items := make([]workflow.Item, len(urls))
	for i, u := range urls {
		items[i] = workflow.NewItem(map[string]any{"url": u, "keep": i})
	}
	return items
}

func run(t *testing.T, n *Node, continueOnFail bool, items []workflow.Item) ([][]workflow.Item, error) {
	t.Helper()
	node := workflow.Node{
		Name:           "Youtube Transcript",
		Type:           NodeName,
		TypeVersion:    1,
		Parameters:     map[string]any{ParamURL: "={{ $json.url }}"},
		ContinueOnFail: continueOnFail,
	}
	return workflow.NewRuntime(context.Background(), node, items).Run(n)
}

func TestDescription(t *testing.T) {
	desc := New().Description()
	if desc.Name != "youtubeTranscript" || desc.DisplayName != "Youtube Transcript" {
		t.Errorf("unexpected identity %q / %q", desc.Name, desc.DisplayName)
	}
	if desc.Version != 1 || len(desc.Group) != 1 || desc.Group[0] != "transform" {
		t.Errorf("unexpected version/group %d %v", desc.Version, desc.Group)
	}
	if len(desc.Inputs) != 1 || len(desc.Outputs) != 1 || desc.Inputs[0] != "main" || desc.Outputs[0] != "main" {
		t.Errorf("unexpected connections %v -> %v", desc.Inputs, desc.Outputs)
	}
	prop, ok := desc.Property(ParamURL)
	if !ok {
		t.Fatal("youtubeVideoUrl property missing")
	}
	if prop.Type != workflow.PropertyString || prop.Default != "" {
		t.Errorf("unexpected property %+v", prop)
	}
}

func TestExecuteSuccess(t *testing.T) {
	c := &stubClient{}
	out, err := run(t, newTestNode(c), false, itemsFor("https://youtu.be/a", "https://youtu.be/b"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one output channel, got %d", len(out))
	}
	items := out[0]
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for i, want := range []string{"a", "b"} {
		got := items[i].JSON[TranscriptKey]
		if got != "transcript of https://youtu.be/"+want {
			t.Errorf("item %d: unexpected transcript %v", i, got)
		}
		if items[i].JSON["keep"] != i {
			t.Errorf("item %d: existing field lost", i)
		}
		if items[i].Error != nil {
			t.Errorf("item %d: unexpected error %v", i, items[i].Error)
		}
	}

	for _, opts := range c.opts {
		if opts.Lang != "en" || opts.RetrievePlayer {
			t.Errorf("unexpected session options %+v", opts)
		}
	}
}

func TestExecuteEmptyInput(t *testing.T) {
	c := &stubClient{}
	out, err := run(t, newTestNode(c), false, nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(out) != 1 || len(out[0]) != 0 {
		t.Errorf("expected one empty channel, got %v", out)
	}
	if len(c.targets) != 0 {
		t.Errorf("client should not be called, got %v", c.targets)
	}
}

func TestExecuteStrictFailure(t *testing.T) {
	c := &stubClient{fail: map[string]error{"bad": errors.New("video unavailable")}}
	_, err := run(t, newTestNode(c), false, itemsFor("ok", "bad", "never"))
	if err == nil {
		t.Fatal("expected error")
	}
	idx, ok := workflow.ItemIndex(err)
	if !ok || idx != 1 {
		t.Errorf("expected item index 1, got %d (%v)", idx, ok)
	}
	var opErr *workflow.NodeOperationError
	if !errors.As(err, &opErr) {
		t.Errorf("expected NodeOperationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "video unavailable") {
		t.Errorf("cause missing from %q", err.Error())
	}
	for _, target := range c.targets {
		if target == "never" {
			t.Error("items after the failure must not be processed")
		}
	}
}

func TestExecuteStrictOverwritesContext(t *testing.T) {
	stale := workflow.ErrorContext{}
	stale.SetItemIndex(7)
	cause := workflow.NewNodeOperationError(workflow.Node{Name: "inner"}, errors.New("boom"), stale)

	c := &stubClient{fail: map[string]error{"bad": cause}}
	_, err := run(t, newTestNode(c), false, itemsFor("bad"))
	if err != cause {
		t.Fatalf("expected the original error to be returned, got %v", err)
	}
	if idx, _ := workflow.ItemIndex(err); idx != 0 {
		t.Errorf("expected item index overwritten to 0, got %d", idx)
	}
}

func TestExecuteContinueOnFail(t *testing.T) {
	c := &stubClient{fail: map[string]error{
		"bad1": errors.New("first"),
		"bad2": errors.New("second"),
	}}
	out, err := run(t, newTestNode(c), true, itemsFor("ok", "bad1", "ok2", "bad2"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	items := out[0]
	if len(items) != 6 {
		t.Fatalf("expected 4 + 2 items, got %d", len(items))
	}

	if items[0].JSON[TranscriptKey] == nil || items[2].JSON[TranscriptKey] == nil {
		t.Error("successful items should carry a transcript")
	}
	if _, ok := items[1].JSON[TranscriptKey]; ok {
		t.Error("failed item should be left unchanged")
	}

	for n, want := range []struct {
		index int
		msg   string
	}{{1, "first"}, {3, "second"}} {
		errItem := items[4+n]
		if errItem.PairedItem == nil || errItem.PairedItem.Item != want.index {
			t.Errorf("error item %d: unexpected pairing %+v", n, errItem.PairedItem)
		}
		if errItem.Error == nil || errItem.Error.Message != want.msg {
			t.Errorf("error item %d: unexpected error %+v", n, errItem.Error)
		}
		if errItem.JSON["url"] != items[want.index].JSON["url"] {
			t.Errorf("error item %d: JSON should copy the original item", n)
		}
	}

	// The error item holds a copy, not the original map.
	items[4].JSON["url"] = "changed"
	if items[1].JSON["url"] != "bad1" {
		t.Error("error item JSON aliases the input item")
	}
}

func TestExecuteIdempotent(t *testing.T) {
	c := &stubClient{fail: map[string]error{"bad": errors.New("video unavailable")}}
	n := newTestNode(c)

	first, err := run(t, n, true, itemsFor("https://youtu.be/a", "bad", "https://youtu.be/b"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := run(t, n, true, itemsFor("https://youtu.be/a", "bad", "https://youtu.be/b"))
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one channel per run, got %d and %d", len(first), len(second))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input produced different output:\nfirst:  %+v\nsecond: %+v", first[0], second[0])
	}
}

func TestExecuteMissingKeyResolvesEmpty(t *testing.T) {
	c := &stubClient{fail: map[string]error{"": transcript.ErrInvalidTarget}}
	items := []workflow.Item{workflow.NewItem(map[string]any{"other": 1})}

	out, err := run(t, newTestNode(c), true, items)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(c.targets) != 1 || c.targets[0] != "" {
		t.Errorf("expected the client to receive an empty URL, got %q", c.targets)
	}
	if len(out[0]) != 2 || out[0][1].Error == nil {
		t.Errorf("expected an error item for the missing URL, got %+v", out[0])
	}
}

func TestExecuteEmptyURLReachesClient(t *testing.T) {
	c := &stubClient{fail: map[string]error{"": transcript.ErrInvalidTarget}}
	node := workflow.Node{Name: "yt", Type: NodeName}
	_, err := workflow.NewRuntime(context.Background(), node, itemsFor("ignored")).Run(newTestNode(c))
	if !errors.Is(err, transcript.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if len(c.targets) != 1 || c.targets[0] != "" {
		t.Errorf("expected the client to receive an empty URL, got %q", c.targets)
	}
}

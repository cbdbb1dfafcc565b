// Package youtubetranscript implements the Youtube Transcript workflow node: it
// fetches the transcript of the video named by the youtubeVideoUrl parameter
// and stores it on each item under the "transcript" key.
package youtubetranscript

import (
	"context"
	"errors"
	"fmt"

	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/workflow"
	"github.com/sirupsen/logrus"
)

const (
	NodeName      = "youtubeTranscript"
	ParamURL      = "youtubeVideoUrl"
	TranscriptKey = "transcript"
)

// Session is the part of a transcript client session the node needs.
type Session interface {
	GetInfo(ctx context.Context, target string) (VideoInfo, error)
}

// VideoInfo is the metadata handle a Session returns.
type VideoInfo interface {
	GetTranscript(ctx context.Context) (any, error)
}

// SessionFactory creates a fresh client session for one item.
type SessionFactory func(ctx context.Context, opts transcript.Options) (Session, error)

// Node is the Youtube Transcript node type.
type Node struct {
	newSession SessionFactory
	// base is merged into the per-item session options (HTTP client, limiter, logger).
	base transcript.Options
	log  *logrus.Entry
}

var _ workflow.NodeType = (*Node)(nil)

type Option func(*Node)

// WithSessionFactory replaces the Innertube client, mostly for tests.
func WithSessionFactory(f SessionFactory) Option {
	return func(n *Node) { n.newSession = f }
}

// WithClientOptions sets shared transport settings for every session.
// Player data is never retrieved; Lang falls back to English.
func WithClientOptions(opts transcript.Options) Option {
	return func(n *Node) { n.base = opts }
}

func WithLogger(log *logrus.Entry) Option {
	return func(n *Node) { n.log = log }
}

func New(opts ...Option) *Node {
	n := &Node{
		newSession: innertubeSession,
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Description returns the node's static metadata.
func (n *Node) Description() workflow.NodeTypeDescription {
	return workflow.NodeTypeDescription{
		DisplayName: "Youtube Transcript",
		Name:        NodeName,
		Group:       []string{"transform"},
		Version:     1,
		Description: "Get the transcript of a Youtube video",
		Defaults:    workflow.NodeDefaults{Name: "Youtube Transcript"},
		Inputs:      []string{workflow.ConnectionMain},
		Outputs:     []string{workflow.ConnectionMain},
		Properties: []workflow.NodeProperty{
			{
				DisplayName: "Youtube Video URL",
				Name:        ParamURL,
				Type:        workflow.PropertyString,
				Default:     "",
				Placeholder: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Description: "URL or ID of the video whose transcript to fetch",
			},
		},
	}
}

// outcome is the result of processing one input slot.
type outcome struct {
	index int
	err   error
}

// Execute fetches a transcript for every input item, in order.
//
// With continue-on-fail, a failed item is left untouched and an error item that
// pairs back to it is appended after all input items. Otherwise the first
// failure aborts the run and carries the failing item index.
func (n *Node) Execute(ef workflow.ExecuteFunctions) ([][]workflow.Item, error) {
	ctx := ef.Context()
	items := ef.GetInputData()
	node := ef.GetNode()
	count := len(items)

	outcomes := make([]outcome, 0, count)
	for i := 0; i < count; i++ {
		err := n.processItem(ctx, ef, i, &items[i])
		if err == nil {
			outcomes = append(outcomes, outcome{index: i})
			continue
		}

		log := n.log.WithFields(logrus.Fields{"node": node.Name, "item_index": i}).WithError(err)
		if !ef.ContinueOnFail() {
			log.Warn("Transcript fetch failed, aborting run")
			return nil, attachItemIndex(node, err, i)
		}
		log.Warn("Transcript fetch failed, continuing")
		outcomes = append(outcomes, outcome{index: i, err: err})
	}

	return [][]workflow.Item{collect(node, items, outcomes)}, nil
}

func (n *Node) processItem(ctx context.Context, ef workflow.ExecuteFunctions, i int, item *workflow.Item) error {
	raw, err := ef.GetNodeParameter(ParamURL, i, "")
	if err != nil {
		return err
	}
	var videoURL string
	switch v := raw.(type) {
	case nil:
		// missing keys resolve to empty
	case string:
		videoURL = v
	default:
		videoURL = fmt.Sprint(v)
	}

	opts := n.base
	if opts.Lang == "" {
		opts.Lang = transcript.DefaultLanguage
	}
	opts.RetrievePlayer = false
	if opts.Logger == nil {
		opts.Logger = n.log
	}

	session, err := n.newSession(ctx, opts)
	if err != nil {
		return err
	}
	info, err := session.GetInfo(ctx, videoURL)
	if err != nil {
		return err
	}
	t, err := info.GetTranscript(ctx)
	if err != nil {
		return err
	}

	if item.JSON == nil {
		item.JSON = map[string]any{}
	}
	item.JSON[TranscriptKey] = t
	return nil
}

// collect flattens the per-slot outcomes into the single output channel: every
// input item in order, then one error item per failure.
func collect(node workflow.Node, items []workflow.Item, outcomes []outcome) []workflow.Item {
	out := make([]workflow.Item, 0, len(items))
	out = append(out, items...)
	for _, o := range outcomes {
		if o.err == nil {
			continue
		}
		out = append(out, workflow.Item{
			JSON:       items[o.index].CloneJSON(),
			Error:      workflow.NewExecutionError(node, o.err),
			PairedItem: &workflow.PairedItem{Item: o.index},
		})
	}
	return out
}

// attachItemIndex tags err with the failing item. Errors that already carry a
// context keep it; the item index is overwritten.
func attachItemIndex(node workflow.Node, err error, i int) error {
	var ce workflow.ContextualError
	if errors.As(err, &ce) && ce.ErrorContext() != nil {
		ce.ErrorContext().SetItemIndex(i)
		return err
	}
	ctx := workflow.ErrorContext{}
	ctx.SetItemIndex(i)
	return workflow.NewNodeOperationError(node, err, ctx)
}

func innertubeSession(ctx context.Context, opts transcript.Options) (Session, error) {
	s, err := transcript.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return innertube{s}, nil
}

type innertube struct{ s *transcript.Session }

func (c innertube) GetInfo(ctx context.Context, target string) (VideoInfo, error) {
	info, err := c.s.GetInfo(ctx, target)
	if err != nil {
		return nil, err
	}
	return videoInfo{info}, nil
}

type videoInfo struct{ v *transcript.VideoInfo }

func (v videoInfo) GetTranscript(ctx context.Context) (any, error) {
	return v.v.GetTranscript(ctx)
}

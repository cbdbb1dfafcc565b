package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/metrics"
	"github.com/nijaru/yt-transcript/nodes/youtubetranscript"
	"github.com/nijaru/yt-transcript/transcript"
	"github.com/nijaru/yt-transcript/workflow"
	"github.com/sirupsen/logrus"
)

// Request is one standalone execution of a node over a batch of items.
type Request struct {
	Node           string          `json:"node,omitempty"`
	Parameters     map[string]any  `json:"parameters"`
	ContinueOnFail bool            `json:"continueOnFail"`
	Items          []workflow.Item `json:"items"`
}

// Run is the result handed back to callers.
type Run struct {
	ID     string            `json:"run_id"`
	Output [][]workflow.Item `json:"output"`
}

type RunStore interface {
	SaveRun(ctx context.Context, run *db.Run) error
}

type Archiver interface {
	SaveTranscript(ctx context.Context, videoID string, t *transcript.Transcript) error
}

type Service struct {
	registry *workflow.Registry
	store    RunStore
	archiver Archiver
	timeout  time.Duration

	NewIDFunc func() string
	NowFunc   func() time.Time
}

// NewService wires the execution service. store and archiver may be nil.
func NewService(registry *workflow.Registry, store RunStore, archiver Archiver, timeout time.Duration) *Service {
	return &Service{
		registry:  registry,
		store:     store,
		archiver:  archiver,
		timeout:   timeout,
		NewIDFunc: func() string { return uuid.New().String() },
		NowFunc:   time.Now,
	}
}

// Execute runs the requested node and records the outcome. A strict-mode
// failure returns the run alongside an Unprocessable error that still carries
// the failing item index.
func (s *Service) Execute(ctx context.Context, req Request) (*Run, error) {
	const op = "Service.Execute"

	name := req.Node
	if name == "" {
		name = youtubetranscript.NodeName
	}
	nodeType, ok := s.registry.Get(name)
	if !ok {
		return nil, errors.NotFound(op, nil, fmt.Sprintf("Unknown node %q", name))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	run := &Run{ID: s.NewIDFunc()}
	log := logrus.WithFields(logrus.Fields{
		"run_id": run.ID,
		"node":   name,
		"items":  len(req.Items),
	})

	desc := nodeType.Description()
	node := workflow.Node{
		Name:           desc.Defaults.Name,
		Type:           desc.Name,
		TypeVersion:    desc.Version,
		Parameters:     req.Parameters,
		ContinueOnFail: req.ContinueOnFail,
	}
	items := req.Items
	if items == nil {
		items = []workflow.Item{}
	}
	rt := workflow.NewRuntime(ctx, node, items)

	// Resolve the primary parameter up front; the node may rewrite item data.
	inputs := make([]string, len(items))
	if len(desc.Properties) > 0 {
		for i := range items {
			if v, err := rt.GetNodeParameter(desc.Properties[0].Name, i, ""); err == nil && v != nil {
				inputs[i] = fmt.Sprint(v)
			}
		}
	}

	start := s.NowFunc()
	output, execErr := rt.Run(nodeType)
	dur := s.NowFunc().Sub(start)

	record := s.buildRecord(run.ID, name, items, inputs, output, execErr)
	record.CreatedAt = start.UTC()

	metrics.RecordRun(name, record.Status, dur)
	countItems(name, record)
	s.archive(ctx, log, items, record)
	s.save(ctx, log, record)

	if execErr != nil {
		log.WithError(execErr).Warn("Run failed")
		return run, errors.Unprocessable(op, execErr, execErr.Error())
	}

	run.Output = output
	log.WithFields(logrus.Fields{
		"status":   record.Status,
		"failed":   record.FailedCount,
		"duration": dur.String(),
	}).Info("Run completed")
	return run, nil
}

func (s *Service) buildRecord(id, node string, items []workflow.Item, inputs []string, output [][]workflow.Item, execErr error) *db.Run {
	record := &db.Run{
		ID:         id,
		Node:       node,
		InputCount: len(items),
		Items:      make([]db.RunItem, len(items)),
	}
	for i := range items {
		record.Items[i] = db.RunItem{Index: i, URL: inputs[i], Status: db.ItemSucceeded}
	}

	if execErr != nil {
		record.Status = db.RunFailed
		record.Error = execErr.Error()
		failed, ok := workflow.ItemIndex(execErr)
		if !ok {
			failed = 0
		}
		for i := range record.Items {
			switch {
			case i == failed:
				record.Items[i].Status = db.ItemFailed
				record.Items[i].Error = execErr.Error()
			case i > failed:
				record.Items[i].Status = db.ItemSkipped
			}
		}
		if len(items) > 0 {
			record.FailedCount = 1
		}
	} else {
		record.Status = db.RunSucceeded
		for _, channel := range output {
			record.OutputCount += len(channel)
			for _, item := range channel {
				if item.Error == nil || item.PairedItem == nil {
					continue
				}
				idx := item.PairedItem.Item
				if idx < 0 || idx >= len(record.Items) {
					continue
				}
				record.Items[idx].Status = db.ItemFailed
				record.Items[idx].Error = item.Error.Message
				record.FailedCount++
			}
		}
		if record.FailedCount > 0 {
			record.Status = db.RunPartial
		}
	}

	for i := range record.Items {
		if record.Items[i].Status != db.ItemSucceeded {
			continue
		}
		if v, ok := items[i].JSON[youtubetranscript.TranscriptKey]; ok {
			if raw, err := json.Marshal(v); err == nil {
				record.Items[i].Transcript = raw
			}
		}
	}
	return record
}

func countItems(node string, record *db.Run) {
	counts := map[string]int{}
	for _, item := range record.Items {
		counts[item.Status]++
	}
	for status, n := range counts {
		metrics.RecordItems(node, status, n)
	}
}

func (s *Service) archive(ctx context.Context, log *logrus.Entry, items []workflow.Item, record *db.Run) {
	if s.archiver == nil {
		return
	}
	for i, item := range record.Items {
		if item.Status != db.ItemSucceeded {
			continue
		}
		t, ok := items[i].JSON[youtubetranscript.TranscriptKey].(*transcript.Transcript)
		if !ok || t == nil {
			continue
		}
		err := s.archiver.SaveTranscript(ctx, t.VideoID, t)
		metrics.RecordArchive(err == nil)
		if err != nil {
			log.WithError(err).WithField("video_id", t.VideoID).Warn("Failed to archive transcript")
		}
	}
}

func (s *Service) save(ctx context.Context, log *logrus.Entry, record *db.Run) {
	if s.store == nil {
		return
	}
	// The run has already happened; record it even if the caller gave up.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.SaveRun(saveCtx, record); err != nil {
		log.WithError(err).Error("Failed to record run")
	}
}

// Command ytt runs the Youtube Transcript node over items read from a file or
// stdin and prints the node output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/nodes/youtubetranscript"
	"github.com/nijaru/yt-transcript/workflow"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type envelope struct {
	Output [][]workflow.Item `json:"output" yaml:"output"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ytt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		videoURL       = fs.String("url", "", "Video URL or ID, or an expression such as '={{ $json.url }}'")
		continueOnFail = fs.Bool("continue-on-fail", false, "Emit error items instead of aborting on the first failure")
		input          = fs.String("input", "", "JSON file with input items ('-' for stdin)")
		describe       = fs.Bool("describe", false, "Print the node descriptor and exit")
		format         = fs.String("format", "json", "Output format (json, yaml)")
		logLevel       = fs.String("log-level", "warn", "Log level")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}

	node := youtubetranscript.New(
		youtubetranscript.WithClientOptions(config.LoadConfig().ClientOptions(logrus.NewEntry(log))),
		youtubetranscript.WithLogger(logrus.NewEntry(log)),
	)

	if *describe {
		if err := write(stdout, *format, node.Description()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	items := []workflow.Item{workflow.NewItem(nil)}
	if *input != "" {
		var err error
		items, err = readItems(*input, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	params := map[string]any{}
	if *videoURL != "" {
		params[youtubetranscript.ParamURL] = *videoURL
	}
	wfNode := workflow.Node{
		Name:           "Youtube Transcript",
		Type:           youtubetranscript.NodeName,
		TypeVersion:    1,
		Parameters:     params,
		ContinueOnFail: *continueOnFail,
	}

	output, err := workflow.NewRuntime(ctx, wfNode, items).Run(node)
	if err != nil {
		if idx, ok := workflow.ItemIndex(err); ok {
			fmt.Fprintf(stderr, "Error: item %d: %v\n", idx, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if err := write(stdout, *format, envelope{Output: output}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func readItems(path string, stdin io.Reader) ([]workflow.Item, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return parseItems(data)
}

// parseItems accepts a JSON array or a single object. Each element is either
// an item ({"json": {...}}) or a bare payload object.
func parseItems(data []byte) ([]workflow.Item, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, errors.New("input is empty")
	}

	var raw []map[string]any
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, errors.Wrap(err, "parse input array")
		}
	} else {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, errors.Wrap(err, "parse input object")
		}
		raw = []map[string]any{obj}
	}

	items := make([]workflow.Item, len(raw))
	for i, obj := range raw {
		if payload, ok := obj["json"].(map[string]any); ok && len(obj) == 1 {
			items[i] = workflow.NewItem(payload)
			continue
		}
		items[i] = workflow.NewItem(obj)
	}
	return items, nil
}

func write(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode json")
}

package validation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/workflow"
)

// DefaultMaxItems bounds a single execute request.
const DefaultMaxItems = 500

type Validator struct {
	registry *workflow.Registry
	maxItems int
}

func NewValidator(registry *workflow.Registry, maxItems int) *Validator {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Validator{registry: registry, maxItems: maxItems}
}

// ValidateExecute checks an execute request against the target node's
// descriptor and returns that node. Parameter values are not inspected: the
// node itself decides what a usable URL is.
func (v *Validator) ValidateExecute(nodeName string, params map[string]any, items []workflow.Item) (workflow.NodeType, error) {
	const op = "Validator.ValidateExecute"

	node, ok := v.registry.Get(nodeName)
	if !ok {
		return nil, errors.NotFound(op, nil, fmt.Sprintf("Unknown node %q", nodeName))
	}

	if items == nil {
		return nil, errors.InvalidInput(op, nil, "items is required")
	}
	if len(items) > v.maxItems {
		return nil, errors.InvalidInput(op, nil, fmt.Sprintf("At most %d items are allowed", v.maxItems))
	}
	for i, item := range items {
		if item.JSON == nil {
			return nil, errors.InvalidInput(op, nil, fmt.Sprintf("items[%d].json must be an object", i))
		}
	}

	desc := node.Description()
	var unknown []string
	for name := range params {
		if _, ok := desc.Property(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.InvalidInput(op, nil, "Unknown parameters: "+strings.Join(unknown, ", "))
	}

	return node, nil
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.New(http.StatusMethodNotAllowed, op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.New(http.StatusUnsupportedMediaType, op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.New(http.StatusRequestEntityTooLarge, op, nil, "Request body too large")
	}

	return nil
}

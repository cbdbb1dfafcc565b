package workflow

import (
	"context"
	"fmt"
)

// Runtime runs a single node outside a host. It implements ExecuteFunctions.
type Runtime struct {
	ctx   context.Context
	node  Node
	items []Item
}

var _ ExecuteFunctions = (*Runtime)(nil)

func NewRuntime(ctx context.Context, node Node, items []Item) *Runtime {
	if ctx == nil {
		ctx = context.Background()
	}
	if node.Parameters == nil {
		node.Parameters = map[string]any{}
	}
	return &Runtime{ctx: ctx, node: node, items: items}
}

func (r *Runtime) Context() context.Context { return r.ctx }

func (r *Runtime) GetInputData() []Item { return r.items }

func (r *Runtime) ContinueOnFail() bool { return r.node.ContinueOnFail }

func (r *Runtime) GetNode() Node { return r.node }

func (r *Runtime) GetNodeParameter(name string, itemIndex int, fallback any) (any, error) {
	if itemIndex < 0 || itemIndex >= len(r.items) {
		return nil, fmt.Errorf("item index %d out of range (%d items)", itemIndex, len(r.items))
	}
	value, ok := r.node.Parameters[name]
	if !ok {
		return fallback, nil
	}
	resolved, err := ResolveParameter(value, r.items[itemIndex].JSON)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	return resolved, nil
}

// Run executes n against the runtime's items.
func (r *Runtime) Run(n NodeType) ([][]Item, error) {
	return n.Execute(r)
}

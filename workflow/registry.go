package workflow

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the node types a runner can execute, keyed by description name.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]NodeType
}

func NewRegistry(nodes ...NodeType) *Registry {
	r := &Registry{nodes: make(map[string]NodeType)}
	for _, n := range nodes {
		r.MustRegister(n)
	}
	return r
}

// Register adds a node type. Names must be unique.
func (r *Registry) Register(n NodeType) error {
	name := n.Description().Name
	if name == "" {
		return fmt.Errorf("node type has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("node type %q already registered", name)
	}
	r.nodes[name] = n
	return nil
}

func (r *Registry) MustRegister(n NodeType) {
	if err := r.Register(n); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[name]
	return n, ok
}

// Descriptions returns every registered description sorted by name.
func (r *Registry) Descriptions() []NodeTypeDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NodeTypeDescription, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n.Description())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

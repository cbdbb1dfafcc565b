package workflow

import "context"

// PropertyType is the UI type of a node parameter.
type PropertyType string

const (
	PropertyString  PropertyType = "string"
	PropertyNumber  PropertyType = "number"
	PropertyBoolean PropertyType = "boolean"
)

// ConnectionMain is the default data channel between nodes.
const ConnectionMain = "main"

// NodeProperty describes a single configurable parameter shown in the host UI.
type NodeProperty struct {
	DisplayName string       `json:"displayName" yaml:"displayName"`
	Name        string       `json:"name" yaml:"name"`
	Type        PropertyType `json:"type" yaml:"type"`
	Default     any          `json:"default" yaml:"default"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// NodeDefaults holds the values a new node instance starts with.
type NodeDefaults struct {
	Name string `json:"name" yaml:"name"`
}

// NodeTypeDescription is the static metadata a host uses to register and render a node.
type NodeTypeDescription struct {
	DisplayName string         `json:"displayName" yaml:"displayName"`
	Name        string         `json:"name" yaml:"name"`
	Group       []string       `json:"group" yaml:"group"`
	Version     int            `json:"version" yaml:"version"`
	Description string         `json:"description" yaml:"description"`
	Defaults    NodeDefaults   `json:"defaults" yaml:"defaults"`
	Inputs      []string       `json:"inputs" yaml:"inputs"`
	Outputs     []string       `json:"outputs" yaml:"outputs"`
	Properties  []NodeProperty `json:"properties" yaml:"properties"`
}

// Property returns the property with the given name.
func (d NodeTypeDescription) Property(name string) (NodeProperty, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return NodeProperty{}, false
}

// Node is a configured instance of a node type inside a workflow.
type Node struct {
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	TypeVersion    int            `json:"typeVersion"`
	Parameters     map[string]any `json:"parameters"`
	ContinueOnFail bool           `json:"continueOnFail"`
}

// ExecuteFunctions are the capabilities a host hands to a node during execution.
type ExecuteFunctions interface {
	// Context is cancelled when the host aborts the run.
	Context() context.Context
	GetInputData() []Item
	// GetNodeParameter resolves a parameter for one item, evaluating expressions.
	// fallback is returned when the parameter is not set.
	GetNodeParameter(name string, itemIndex int, fallback any) (any, error)
	ContinueOnFail() bool
	GetNode() Node
}

// NodeType is implemented by every node the host can load.
type NodeType interface {
	Description() NodeTypeDescription
	// Execute returns one slice of items per output channel.
	Execute(ef ExecuteFunctions) ([][]Item, error)
}

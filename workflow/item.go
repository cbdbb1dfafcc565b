package workflow

import "maps"

// Item is one unit of workflow data flowing between nodes.
type Item struct {
	JSON       map[string]any  `json:"json" yaml:"json"`
	Error      *ExecutionError `json:"error,omitempty" yaml:"error,omitempty"`
	PairedItem *PairedItem     `json:"pairedItem,omitempty" yaml:"pairedItem,omitempty"`
}

// PairedItem points an output item back at the input item it came from.
type PairedItem struct {
	Item int `json:"item" yaml:"item"`
}

// NewItem wraps a JSON payload into an item.
func NewItem(json map[string]any) Item {
	if json == nil {
		json = map[string]any{}
	}
	return Item{JSON: json}
}

// CloneJSON returns a shallow copy of the item's payload.
func (i Item) CloneJSON() map[string]any {
	if i.JSON == nil {
		return map[string]any{}
	}
	return maps.Clone(i.JSON)
}

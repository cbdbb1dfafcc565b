package workflow

import (
	"errors"
	"fmt"
)

// ErrorContext carries host-facing details about where a failure happened.
type ErrorContext struct {
	ItemIndex *int `json:"itemIndex,omitempty"`
	RunIndex  int  `json:"runIndex,omitempty"`
}

// SetItemIndex records the failing item.
func (c *ErrorContext) SetItemIndex(i int) {
	c.ItemIndex = &i
}

// ContextualError is implemented by errors that already carry an ErrorContext.
type ContextualError interface {
	error
	ErrorContext() *ErrorContext
}

// NodeOperationError is a failure raised while a node processes its items.
type NodeOperationError struct {
	Node    Node
	Cause   error
	Context *ErrorContext
}

// NewNodeOperationError wraps cause with the node and context it occurred in.
func NewNodeOperationError(node Node, cause error, ctx ErrorContext) *NodeOperationError {
	return &NodeOperationError{Node: node, Cause: cause, Context: &ctx}
}

func (e *NodeOperationError) Error() string {
	msg := "node operation failed"
	if e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Context != nil && e.Context.ItemIndex != nil {
		return fmt.Sprintf("%s [item %d]", msg, *e.Context.ItemIndex)
	}
	return msg
}

func (e *NodeOperationError) Unwrap() error {
	return e.Cause
}

func (e *NodeOperationError) ErrorContext() *ErrorContext {
	if e.Context == nil {
		e.Context = &ErrorContext{}
	}
	return e.Context
}

// ItemIndex reports the item index attached to err, if any.
func ItemIndex(err error) (int, bool) {
	var ce ContextualError
	if !errors.As(err, &ce) {
		return 0, false
	}
	ctx := ce.ErrorContext()
	if ctx == nil || ctx.ItemIndex == nil {
		return 0, false
	}
	return *ctx.ItemIndex, true
}

// ExecutionError is the serialisable form of a failure attached to an item.
type ExecutionError struct {
	Message string `json:"message" yaml:"message"`
	// Description is the innermost cause when it differs from Message.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	NodeName    string `json:"node,omitempty" yaml:"node,omitempty"`
	ItemIndex   *int   `json:"itemIndex,omitempty" yaml:"itemIndex,omitempty"`
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// NewExecutionError converts err into its item form.
func NewExecutionError(node Node, err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var existing *ExecutionError
	if errors.As(err, &existing) {
		return existing
	}
	ee := &ExecutionError{Message: err.Error(), NodeName: node.Name}
	if root := rootCause(err); root != err {
		ee.Description = root.Error()
	}
	if idx, ok := ItemIndex(err); ok {
		ee.ItemIndex = &idx
	}
	return ee
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

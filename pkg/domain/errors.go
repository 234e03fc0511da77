package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for a missing, empty or malformed code or parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDecodeFailed is returned when no root produces a fully-consuming decode.
	ErrDecodeFailed = errors.New("no matching rule found or code is incomplete")

	// ErrRuleNotFound is returned when a rule id cannot be found in the store.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNodeNotFound is returned when a node id cannot be found in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeHasChildren is returned when deleting a node that still has children.
	ErrNodeHasChildren = errors.New("node has children")

	// ErrInvalidPick is returned when a compose path does not follow the tree.
	ErrInvalidPick = errors.New("invalid pick")
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// ValidateNode checks the fields a store needs before persisting a node.
// It does not check tree shape; see internal/validator for that.
func ValidateNode(n Node) error {
	var errs []error
	if n.RuleID <= 0 {
		errs = append(errs, &ValidationError{Key: "rule_id", Reason: "is required"})
	}
	if n.Name == "" {
		errs = append(errs, &ValidationError{Key: "name", Reason: "is required"})
	}
	if n.SegmentLength < 0 {
		errs = append(errs, &ValidationError{Key: "segment_length", Reason: "must not be negative", Value: n.SegmentLength})
	}
	if _, ok := ParseNodeType(string(n.Type)); !ok {
		errs = append(errs, &ValidationError{Key: "node_type", Reason: "unknown node type", Value: n.Type})
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCustomerNotFound is returned when the owning customer does not exist
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrInteractionNotFound is returned when an interaction id is unknown
	ErrInteractionNotFound = errors.New("interaction not found")
)

// FieldError is a single rule violation on one input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule violation of one input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// EnrichmentError is returned when an input cannot be resolved to its owning customer
type EnrichmentError struct {
	CustomerID string
	Err        error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("failed to enrich interaction for customer %s: %v", e.CustomerID, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when the atomic unit aborts
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

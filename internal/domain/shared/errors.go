package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNoPipelineRun     = NewDomainError("NO_PIPELINE_RUN", "No completed pipeline run is available")
	ErrAllDatasetsFailed = NewDomainError("ALL_DATASETS_FAILED", "Every input dataset failed structural validation")
)

// SchemaError signals that a dataset is structurally unusable: a required
// identifying column is absent. It halts processing for that dataset only;
// the other datasets continue through the pipeline.
type SchemaError struct {
	Dataset        string   `json:"dataset"`
	MissingColumns []string `json:"missing_columns"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: required identifying column(s) missing: %v", e.Dataset, e.MissingColumns)
}

// NewSchemaError creates a schema error for a dataset
func NewSchemaError(dataset string, missing []string) *SchemaError {
	return &SchemaError{Dataset: dataset, MissingColumns: missing}
}

// ExternalServiceError wraps a failure of an external collaborator (such as
// the insight generator). It is always isolated from core results.
type ExternalServiceError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Service, e.Err)
}

// Unwrap returns the underlying error
func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound       ErrorCode = "PLAN-001"
	ErrCodePlanInvalid        ErrorCode = "PLAN-002"
	ErrCodePlanCyclicDep      ErrorCode = "PLAN-003"
	ErrCodePlanSummaryMissing ErrorCode = "PLAN-004"
	ErrCodePlanTaskMissing    ErrorCode = "PLAN-005"

	// Task errors (TASK-001 to TASK-099)
	ErrCodeTaskExecutionFailed ErrorCode = "TASK-001"
	ErrCodeTaskGeneratorError  ErrorCode = "TASK-002"

	// Workflow errors (FLOW-001 to FLOW-099)
	ErrCodePhaseFailed       ErrorCode = "FLOW-001"
	ErrCodeWorkflowState     ErrorCode = "FLOW-002"
	ErrCodeWorkflowNoContext ErrorCode = "FLOW-003"

	// Repository errors (REPO-001 to REPO-099)
	ErrCodeRepoOperationFailed ErrorCode = "REPO-001"
	ErrCodeRepoDirCreate       ErrorCode = "REPO-002"
	ErrCodeRepoCommandFailed   ErrorCode = "REPO-003"
	ErrCodeRepoNoRemote        ErrorCode = "REPO-004"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// LoomError represents an enhanced error with code, suggestions, and documentation
type LoomError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *LoomError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *LoomError) Unwrap() error {
	return e.Cause
}

// New creates a new LoomError
func New(code ErrorCode, message string) *LoomError {
	return &LoomError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new LoomError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *LoomError {
	return &LoomError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *LoomError) WithSuggestion(suggestion string) *LoomError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *LoomError) WithSuggestions(suggestions ...string) *LoomError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *LoomError) WithDocs(url string) *LoomError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan not found error
func NewPlanNotFoundError(planID string) *LoomError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("execution plan not found: %s", planID)).
		WithSuggestion("Run 'codeloom plan create' to generate a new plan").
		WithSuggestion("Run 'codeloom plan list' to see stored plan ids")
}

// NewPlanInvalidError creates a plan validation error
func NewPlanInvalidError(details string) *LoomError {
	return New(ErrCodePlanInvalid, fmt.Sprintf("invalid execution plan: %s", details)).
		WithSuggestion("Regenerate the plan from the document summary").
		WithSuggestion("Check that every task dependency references a task in the plan")
}

// NewDependencyCycleError creates a circular dependency error
func NewDependencyCycleError(cycle []string) *LoomError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("circular task dependency: %s", strings.Join(cycle, " -> "))).
		WithSuggestion("Remove one of the dependencies participating in the cycle").
		WithSuggestion("Task dependencies must form a directed acyclic graph")
}

// NewSummaryMissingError creates a missing document summary error
func NewSummaryMissingError() *LoomError {
	return New(ErrCodePlanSummaryMissing, "document summary is required for plan generation").
		WithSuggestion("Provide a summary produced by the document analyzer").
		WithSuggestion("Pass --doc <summary.json> to the build command")
}

// NewTaskExecutionError creates a per-task execution failure
func NewTaskExecutionError(taskID string, cause error) *LoomError {
	return Wrap(ErrCodeTaskExecutionFailed, fmt.Sprintf("task %s failed", taskID), cause).
		WithSuggestion("Inspect the generator output for this task").
		WithSuggestion("Sibling tasks are unaffected; the build continues")
}

// NewPhaseFailureError creates a fatal phase-level failure
func NewPhaseFailureError(phase string, cause error) *LoomError {
	return Wrap(ErrCodePhaseFailed, fmt.Sprintf("phase %s failed", phase), cause).
		WithSuggestion("Check the phase results collected before the failure").
		WithSuggestion("Resume the build with 'codeloom build --resume <plan-id>'")
}

// NewRepositoryOperationError creates a degraded repository operation error
func NewRepositoryOperationError(operation string, cause error) *LoomError {
	return Wrap(ErrCodeRepoOperationFailed, fmt.Sprintf("repository operation %s failed", operation), cause).
		WithSuggestion("Verify the remote is reachable and credentials are configured").
		WithSuggestion("The build continues with a local-only repository")
}

// NewRepoDirCreateError creates a working directory creation error
func NewRepoDirCreateError(path string, cause error) *LoomError {
	return Wrap(ErrCodeRepoDirCreate, fmt.Sprintf("cannot create working directory: %s", path), cause).
		WithSuggestion("Check filesystem permissions for the workspace root").
		WithSuggestion("Set a different workspace root in the configuration")
}

// NewConfigNotFoundError creates a configuration file not found error
func NewConfigNotFoundError(path string) *LoomError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithSuggestion("Create a codeloom.yaml in the working directory").
		WithSuggestion("Defaults are used when no configuration file is present")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *LoomError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *LoomError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

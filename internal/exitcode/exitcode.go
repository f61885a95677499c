package exitcode

import (
	"errors"
	"os"

	loomerrors "github.com/codeloom/codeloom/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// PlanError indicates a plan could not be created, validated, or loaded
	PlanError = 3

	// RepositoryError indicates a version-control operation failed fatally
	RepositoryError = 4

	// WorkflowError indicates a build terminated in the FAILED state
	WorkflowError = 5

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var loomErr *loomerrors.LoomError
	if errors.As(err, &loomErr) {
		switch loomErr.Code {
		case loomerrors.ErrCodePlanNotFound,
			loomerrors.ErrCodePlanInvalid,
			loomerrors.ErrCodePlanCyclicDep,
			loomerrors.ErrCodePlanSummaryMissing,
			loomerrors.ErrCodePlanTaskMissing:
			return PlanError
		case loomerrors.ErrCodeRepoOperationFailed,
			loomerrors.ErrCodeRepoDirCreate,
			loomerrors.ErrCodeRepoCommandFailed:
			return RepositoryError
		case loomerrors.ErrCodePhaseFailed,
			loomerrors.ErrCodeWorkflowState,
			loomerrors.ErrCodeWorkflowNoContext:
			return WorkflowError
		case loomerrors.ErrCodeConfigNotFound,
			loomerrors.ErrCodeConfigInvalid:
			return UsageError
		}
	}

	return GeneralError
}

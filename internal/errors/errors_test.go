package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestLoomErrorFormat(t *testing.T) {
	err := New(ErrCodePlanInvalid, "plan has no tasks").
		WithSuggestion("add at least one task").
		WithDocs("https://example.com/docs")

	msg := err.Error()
	if !strings.Contains(msg, "[PLAN-002]") {
		t.Errorf("Error() missing code, got %q", msg)
	}
	if !strings.Contains(msg, "plan has no tasks") {
		t.Errorf("Error() missing message, got %q", msg)
	}
	if !strings.Contains(msg, "add at least one task") {
		t.Errorf("Error() missing suggestion, got %q", msg)
	}
	if !strings.Contains(msg, "https://example.com/docs") {
		t.Errorf("Error() missing docs URL, got %q", msg)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("exit status 128")
	err := Wrap(ErrCodeRepoCommandFailed, "git fetch failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}

	var loomErr *LoomError
	if !stderrors.As(err, &loomErr) {
		t.Fatal("errors.As should recover *LoomError")
	}
	if loomErr.Code != ErrCodeRepoCommandFailed {
		t.Errorf("Code = %s, want %s", loomErr.Code, ErrCodeRepoCommandFailed)
	}
}

func TestNamedConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *LoomError
		code ErrorCode
	}{
		{"PlanNotFound", NewPlanNotFoundError("plan-123"), ErrCodePlanNotFound},
		{"DependencyCycle", NewDependencyCycleError([]string{"a", "b", "a"}), ErrCodePlanCyclicDep},
		{"SummaryMissing", NewSummaryMissingError(), ErrCodePlanSummaryMissing},
		{"TaskExecution", NewTaskExecutionError("task-001", stderrors.New("boom")), ErrCodeTaskExecutionFailed},
		{"PhaseFailure", NewPhaseFailureError("planning", stderrors.New("no plan")), ErrCodePhaseFailed},
		{"RepositoryOperation", NewRepositoryOperationError("push", stderrors.New("rejected")), ErrCodeRepoOperationFailed},
		{"RepoDirCreate", NewRepoDirCreateError("/tmp/x", stderrors.New("denied")), ErrCodeRepoDirCreate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if len(tt.err.Suggestions) == 0 {
				t.Error("named constructors should carry suggestions")
			}
		})
	}
}

func TestDependencyCycleMessage(t *testing.T) {
	err := NewDependencyCycleError([]string{"task-a", "task-b", "task-a"})
	if !strings.Contains(err.Error(), "task-a -> task-b -> task-a") {
		t.Errorf("cycle path missing from message: %q", err.Error())
	}
}

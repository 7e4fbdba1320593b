package service

import (
	"context"
	"testing"

	"codemaster/internal/app/simulator"
)

func TestExecuteRecordsLogRow(t *testing.T) {
	setTestConfig(t)
	execRepo := &fakeExecutionRepo{}
	svc := NewExecutionService(simulator.New(), execRepo, testLogger())

	result := svc.Execute(context.Background(), "user-1", simulator.Request{
		Code:     `print("hi")`,
		Language: "python",
		Input:    "stdin",
	})

	if result.Output != "hi" || result.Status != simulator.StatusSuccess {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(execRepo.inserted) != 1 {
		t.Fatalf("expected one log row, got %d", len(execRepo.inserted))
	}

	row := execRepo.inserted[0]
	if row.UserID != "user-1" || row.Language != "python" || row.Output != "hi" {
		t.Fatalf("log row fields wrong: %+v", row)
	}
	if row.InputData == nil || *row.InputData != "stdin" {
		t.Fatalf("expected input echoed into the log row")
	}
	if row.Status != "success" || row.ErrorMessage != nil {
		t.Fatalf("expected clean status in log row, got %q / %v", row.Status, row.ErrorMessage)
	}
}

func TestExecuteRecordsSimulatedError(t *testing.T) {
	setTestConfig(t)
	execRepo := &fakeExecutionRepo{}
	svc := NewExecutionService(simulator.New(), execRepo, testLogger())

	result := svc.Execute(context.Background(), "user-1", simulator.Request{
		Code:     "syntax_error",
		Language: "python",
	})

	if result.Status != simulator.StatusError {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	row := execRepo.inserted[0]
	if row.Status != "error" {
		t.Fatalf("expected error status persisted, got %q", row.Status)
	}
	if row.ErrorMessage == nil || *row.ErrorMessage != "SyntaxError: Invalid syntax" {
		t.Fatalf("expected canned error message persisted, got %v", row.ErrorMessage)
	}
}

func TestExecuteSurvivesLogWriteFailure(t *testing.T) {
	setTestConfig(t)
	execRepo := &fakeExecutionRepo{failWrite: true}
	svc := NewExecutionService(simulator.New(), execRepo, testLogger())

	result := svc.Execute(context.Background(), "user-1", simulator.Request{
		Code:     `print("hi")`,
		Language: "python",
	})

	// The caller still gets a usable result when the log insert fails.
	if result.Output != "hi" || result.Status != simulator.StatusSuccess {
		t.Fatalf("result must not depend on the log write: %+v", result)
	}
}

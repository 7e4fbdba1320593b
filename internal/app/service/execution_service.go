package service

import (
	"context"

	"codemaster/internal/app/simulator"
	"codemaster/internal/domain/model"
	"codemaster/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExecutionService struct {
	sim      simulator.Simulator
	execRepo repository.ExecutionRepository
	logger   *zap.Logger
}

func NewExecutionService(sim simulator.Simulator, execRepo repository.ExecutionRepository, logger *zap.Logger) *ExecutionService {
	return &ExecutionService{sim: sim, execRepo: execRepo, logger: logger}
}

// Execute runs the simulator and records an execution-log row for the user.
// A failed log write is reported to the log only; the caller still gets the
// execution result.
func (s *ExecutionService) Execute(ctx context.Context, userID string, req simulator.Request) simulator.Result {
	result := s.sim.Execute(ctx, req)

	var input *string
	if req.Input != "" {
		input = &req.Input
	}
	entry := &model.CodeExecution{
		ID:              uuid.NewString(),
		UserID:          userID,
		Code:            req.Code,
		Language:        req.Language,
		InputData:       input,
		Output:          result.Output,
		ErrorMessage:    result.Error,
		ExecutionTimeMs: result.ExecutionTimeMs,
		MemoryUsedKb:    result.MemoryUsedKb,
		Status:          string(result.Status),
	}
	if err := s.execRepo.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to record code execution",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	return result
}

func (s *ExecutionService) History(ctx context.Context, userID string, limit, offset int) ([]model.CodeExecution, error) {
	return s.execRepo.ListByUser(ctx, userID, limit, offset)
}

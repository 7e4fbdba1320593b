// Package grading converts a simulated execution result into a pass/fail
// verdict bounded by a challenge's point value. It is a heuristic, not a
// correctness oracle: a run with no simulated error passes regardless of
// whether it solves the stated problem.
package grading

import (
	"math"
	"strings"

	"codemaster/internal/app/simulator"
	"codemaster/internal/domain/model"
)

type Verdict struct {
	Status model.SubmissionStatus `json:"status"`
	Score  int                    `json:"score"`
}

// Grade returns the verdict for a submission. Baseline credit is 80% of the
// challenge's points for executing without a simulated error; a submission
// longer than 20 characters containing "return" earns full credit. Every
// other result fails with a zero score.
func Grade(result simulator.Result, code string, points int) Verdict {
	verdict := Verdict{Status: model.SubmissionFailed, Score: 0}

	if result.Status != simulator.StatusSuccess {
		return verdict
	}
	if result.Error != nil && *result.Error != "" {
		return verdict
	}

	verdict.Status = model.SubmissionPassed
	verdict.Score = int(math.Round(float64(points) * 0.8))

	if strings.Contains(code, "return") && len(code) > 20 {
		verdict.Score = points
	}

	return verdict
}

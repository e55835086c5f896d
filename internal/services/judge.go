package services

import (
	"context"
	"fmt"
	"strings"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"

	"go.uber.org/zap"
)

// VerdictResult is the terminal outcome of grading one submission.
// FailedCase is 1-based and only set for WRONG_ANSWER and
// COMPILATION_ERROR.
type VerdictResult struct {
	Verdict       string
	FailedCase    *int
	CompileOutput *string
}

// JudgeService reduces a submission to a single verdict by driving the
// execution client across the problem's test cases in order.
type JudgeService struct {
	executor ExecutionClient
}

func NewJudgeService(executor ExecutionClient) *JudgeService {
	return &JudgeService{executor: executor}
}

// Evaluate runs the test cases sequentially and stops at the first failure.
// A non-empty compile diagnostic short-circuits everything: compilation is
// language-wide, not per-case, so the first case is enough to surface it.
// Any sandbox failure aborts evaluation with an error and never becomes a
// verdict.
func (s *JudgeService) Evaluate(ctx context.Context, languageID int, sourceCode string, cases []models.TestCase) (*VerdictResult, error) {
	if !IsLanguageSupported(languageID) {
		return nil, fmt.Errorf("%w: language ID %d", models.ErrUnsupportedLanguage, languageID)
	}

	// A zero-case problem would be accepted vacuously; refuse to grade it
	// and let the admin path fix the problem definition instead.
	if len(cases) == 0 {
		return nil, models.ErrNoTestCases
	}

	for i, tc := range cases {
		output, err := s.executor.Execute(ctx, languageID, sourceCode, tc.Input)
		if err != nil {
			return nil, fmt.Errorf("grading aborted on case %d: %w", i+1, err)
		}

		if output.CompileOutput != "" {
			failedCase := i + 1
			compileOutput := output.CompileOutput

			logger.Log.Info("Submission failed to compile",
				zap.Int("language_id", languageID))

			return &VerdictResult{
				Verdict:       models.VerdictCompileError,
				FailedCase:    &failedCase,
				CompileOutput: &compileOutput,
			}, nil
		}

		actual := strings.TrimSpace(output.Stdout)
		expected := strings.TrimSpace(tc.ExpectedOutput)

		if actual != expected {
			failedCase := i + 1
			return &VerdictResult{
				Verdict:    models.VerdictWrongAnswer,
				FailedCase: &failedCase,
			}, nil
		}
	}

	return &VerdictResult{Verdict: models.VerdictAccepted}, nil
}

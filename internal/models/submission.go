package models

import (
	"errors"
	"strings"
	"time"
)

const (
	VerdictAccepted     = "ACCEPTED"
	VerdictWrongAnswer  = "WRONG_ANSWER"
	VerdictCompileError = "COMPILATION_ERROR"
)

// Submission is an append-only record of one completed grading attempt.
// Rows are never updated: the verdict carried here is final.
type Submission struct {
	ID            string    `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	ProblemID     int       `db:"problem_id" json:"problem_id"`
	LanguageID    int       `db:"language_id" json:"language_id"`
	SourceCode    string    `db:"source_code" json:"source_code"`
	Verdict       string    `db:"verdict" json:"verdict"`
	FailedCase    *int      `db:"failed_case" json:"failed_case,omitempty"`
	CompileOutput *string   `db:"compile_output" json:"compile_output,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type SubmissionRequest struct {
	ProblemID  int    `json:"problem_id" binding:"required"`
	LanguageID int    `json:"language_id" binding:"required"`
	SourceCode string `json:"source_code" binding:"required"`
}

type SubmissionListItem struct {
	ID         string    `db:"id" json:"id"`
	LanguageID int       `db:"language_id" json:"language_id"`
	Verdict    string    `db:"verdict" json:"verdict"`
	FailedCase *int      `db:"failed_case" json:"failed_case,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (r *SubmissionRequest) ValidateRequest() error {
	if r.ProblemID <= 0 {
		return errors.New("problem ID must be a positive integer")
	}

	if r.LanguageID <= 0 {
		return errors.New("language ID must be a positive integer")
	}

	if strings.TrimSpace(r.SourceCode) == "" {
		return errors.New("source code cannot be empty")
	}

	return nil
}

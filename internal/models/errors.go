package models

import "errors"

// Grading error taxonomy. Verdicts are data, these are not: none of them
// may ever be persisted as a submission outcome.
var (
	// ErrUnsupportedLanguage is returned before any sandbox call is made.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrContestFrozen rejects grading while the contest gate is closed.
	ErrContestFrozen = errors.New("contest is frozen")

	// ErrExecutionFailed marks a sandbox transport or protocol failure.
	// Transient: the caller may retry, it must never become a verdict.
	ErrExecutionFailed = errors.New("code execution failed")

	ErrProblemNotFound    = errors.New("problem not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrNoTestCases flags a published problem with an empty test-case list.
	// Grading such a problem would be a vacuous Accepted, so it is refused.
	ErrNoTestCases = errors.New("problem has no test cases")
)

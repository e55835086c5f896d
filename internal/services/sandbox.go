package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"codecrackers/internal/logger"
	"codecrackers/internal/models"

	"go.uber.org/zap"
)

// ExecutionOutput is the minimal result contract used from the sandbox:
// what the program printed, what it wrote to stderr, and any compiler
// diagnostics. Resource accounting is the sandbox's problem, not ours.
type ExecutionOutput struct {
	Stdout        string
	Stderr        string
	CompileOutput string
}

// ExecutionClient runs one source file against one stdin payload in the
// external sandbox. Implementations own no state and never retry: a
// transport failure surfaces as models.ErrExecutionFailed.
type ExecutionClient interface {
	Execute(ctx context.Context, languageID int, sourceCode, stdin string) (*ExecutionOutput, error)
}

type languageRuntime struct {
	Language string
	Version  string
	Name     string
}

// Submissions arrive with Judge0-style numeric language IDs; the engine
// wants a (language, version) pair.
var languageRuntimes = map[int]languageRuntime{
	71: {Language: "python", Version: "3.10.0", Name: "Python"},
	54: {Language: "c++", Version: "10.2.0", Name: "C++"},
	62: {Language: "java", Version: "15.0.2", Name: "Java"},
	63: {Language: "javascript", Version: "18.15.0", Name: "JavaScript"},
	50: {Language: "c", Version: "10.2.0", Name: "C"},
}

// IsLanguageSupported reports whether a language ID maps to a runtime,
// letting callers reject bad submissions before anything is enqueued.
func IsLanguageSupported(languageID int) bool {
	_, ok := languageRuntimes[languageID]
	return ok
}

// LanguageName returns a display name for a language ID.
func LanguageName(languageID int) string {
	if rt, ok := languageRuntimes[languageID]; ok {
		return rt.Name
	}
	return "Unknown"
}

type sandboxFile struct {
	Content string `json:"content"`
}

type sandboxRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []sandboxFile `json:"files"`
	Stdin    string        `json:"stdin"`
}

type sandboxResponse struct {
	Compile *struct {
		Stderr string `json:"stderr"`
		Output string `json:"output"`
	} `json:"compile,omitempty"`
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
	} `json:"run"`
}

// SandboxClient talks to a Piston-compatible execution engine over HTTP.
type SandboxClient struct {
	executeURL string
	httpClient *http.Client
}

func NewSandboxClient(executeURL string, timeout time.Duration) *SandboxClient {
	return &SandboxClient{
		executeURL: executeURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SandboxClient) Execute(ctx context.Context, languageID int, sourceCode, stdin string) (*ExecutionOutput, error) {
	runtime, ok := languageRuntimes[languageID]
	if !ok {
		return nil, fmt.Errorf("%w: language ID %d", models.ErrUnsupportedLanguage, languageID)
	}

	payload := sandboxRequest{
		Language: runtime.Language,
		Version:  runtime.Version,
		Files:    []sandboxFile{{Content: sourceCode}},
		Stdin:    stdin,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", models.ErrExecutionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.executeURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %v", models.ErrExecutionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Log.Error("Sandbox request failed",
			zap.String("url", c.executeURL),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrExecutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Log.Error("Sandbox returned non-success status",
			zap.String("url", c.executeURL),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: sandbox returned status %d", models.ErrExecutionFailed, resp.StatusCode)
	}

	var result sandboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: malformed sandbox response: %v", models.ErrExecutionFailed, err)
	}

	output := &ExecutionOutput{
		Stdout: result.Run.Stdout,
		Stderr: result.Run.Stderr,
	}
	if result.Compile != nil {
		// Only compiler stderr counts as a diagnostic; warnings the engine
		// echoes on stdout must not fail a submission.
		output.CompileOutput = result.Compile.Stderr
	}

	return output, nil
}

package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codecrackers/internal/models"
	"codecrackers/internal/services"
)

func TestSandboxExecuteSendsRuntimeAndSource(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"run":{"stdout":"42\n","stderr":""}}`))
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	out, err := client.Execute(context.Background(), 71, "print(42)", "ignored")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Stdout != "42\n" {
		t.Fatalf("expected stdout passthrough, got %q", out.Stdout)
	}

	if captured["language"] != "python" || captured["version"] != "3.10.0" {
		t.Fatalf("expected python 3.10.0 runtime, got %v / %v", captured["language"], captured["version"])
	}
	if captured["stdin"] != "ignored" {
		t.Fatalf("expected stdin forwarded, got %v", captured["stdin"])
	}
	files, ok := captured["files"].([]any)
	if !ok || len(files) != 1 {
		t.Fatalf("expected exactly one source file, got %v", captured["files"])
	}
	if content := files[0].(map[string]any)["content"]; content != "print(42)" {
		t.Fatalf("expected source code in file content, got %v", content)
	}
}

func TestSandboxExecuteSurfacesCompileStderr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"compile":{"stderr":"main.cpp:1: error: expected ';'","output":"warning noise"},"run":{"stdout":"","stderr":""}}`))
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	out, err := client.Execute(context.Background(), 54, "int main(){", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.CompileOutput != "main.cpp:1: error: expected ';'" {
		t.Fatalf("expected compiler stderr, got %q", out.CompileOutput)
	}
}

func TestSandboxExecuteIgnoresCompileWarningsOnStdout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"compile":{"stderr":"","output":"note: deprecated flag"},"run":{"stdout":"ok\n","stderr":""}}`))
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	out, err := client.Execute(context.Background(), 50, "int main(){return 0;}", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.CompileOutput != "" {
		t.Fatalf("compile diagnostics from stdout must not count, got %q", out.CompileOutput)
	}
}

func TestSandboxExecuteUnsupportedLanguageMakesNoCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"run":{"stdout":"","stderr":""}}`))
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	_, err := client.Execute(context.Background(), 9999, "code", "")
	if !errors.Is(err, models.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("unsupported language must be rejected before the HTTP call, got %d calls", calls)
	}
}

func TestSandboxExecuteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	_, err := client.Execute(context.Background(), 71, "print(1)", "")
	if !errors.Is(err, models.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestSandboxExecuteMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := services.NewSandboxClient(srv.URL, 5*time.Second)
	_, err := client.Execute(context.Background(), 71, "print(1)", "")
	if !errors.Is(err, models.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestSandboxExecuteUnreachableEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := services.NewSandboxClient(srv.URL, time.Second)
	_, err := client.Execute(context.Background(), 71, "print(1)", "")
	if !errors.Is(err, models.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestIsLanguageSupported(t *testing.T) {
	for _, id := range []int{50, 54, 62, 63, 71} {
		if !services.IsLanguageSupported(id) {
			t.Errorf("expected language %d to be supported", id)
		}
	}
	if services.IsLanguageSupported(0) || services.IsLanguageSupported(9999) {
		t.Errorf("unexpected support for unknown language IDs")
	}
}

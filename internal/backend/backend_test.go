//nolint:bodyclose // Test file uses mock responses with NopCloser bodies
package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/gorewood/shiplog/internal/output"
)

// mockHTTPDoer implements HTTPDoer for testing.
type mockHTTPDoer struct {
	response *http.Response
	err      error
}

func (m *mockHTTPDoer) Do(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// capturingHTTPDoer records the last request for inspection.
type capturingHTTPDoer struct {
	gotURL     string
	gotHeaders http.Header
	gotBody    string
	response   *http.Response
	err        error
	calls      int
}

func (c *capturingHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	c.calls++
	c.gotURL = req.URL.String()
	c.gotHeaders = req.Header.Clone()
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		c.gotBody = string(body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
	}
	return c.response, c.err
}

// mockResponse creates a mock HTTP response with the given status and body.
// The body uses io.NopCloser so no explicit close is required.
func mockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

// textResponseJSON is a minimal successful messages API body.
const textResponseJSON = `{"content": [{"type": "text", "text": "## Fixed\n- something"}]}`

func TestNew_DefaultsToAnthropic(t *testing.T) {
	gen, err := New(context.Background(), Config{
		Model:      "sonnet",
		APIKey:     "test-key",
		HTTPClient: &mockHTTPDoer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, ok := gen.(*anthropicBackend); !ok {
		t.Errorf("New() = %T, want *anthropicBackend", gen)
	}
}

func TestNew_BedrockAndVertexExclusive(t *testing.T) {
	_, err := New(context.Background(), Config{
		Model:      "sonnet",
		UseBedrock: true,
		UseVertex:  true,
	})
	if err == nil {
		t.Fatal("New() expected error for both backends selected")
	}
	if output.GetExitCode(err) != output.ExitUserError {
		t.Errorf("exit code = %d, want user error", output.GetExitCode(err))
	}
}

func TestNew_AnthropicRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "sonnet"})
	if err == nil {
		t.Fatal("New() expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("error = %q, want mention of ANTHROPIC_API_KEY", err.Error())
	}
	if output.GetExitCode(err) != output.ExitUserError {
		t.Errorf("exit code = %d, want user error", output.GetExitCode(err))
	}
}

func TestNew_VertexRequiresProject(t *testing.T) {
	doer := &capturingHTTPDoer{}
	_, err := New(context.Background(), Config{
		Model:       "sonnet",
		UseVertex:   true,
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
		HTTPClient:  doer,
	})
	if err == nil {
		t.Fatal("New() expected error for missing vertex project")
	}
	if !strings.Contains(err.Error(), "configuration missing") {
		t.Errorf("error = %q, want 'configuration missing'", err.Error())
	}
	if doer.calls != 0 {
		t.Errorf("construction made %d network calls, want 0", doer.calls)
	}
}

func TestNew_SelectsBedrock(t *testing.T) {
	gen, err := New(context.Background(), Config{
		Model:      "sonnet",
		UseBedrock: true,
		Invoker:    &fakeInvoker{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := gen.(*bedrockBackend); !ok {
		t.Errorf("New() = %T, want *bedrockBackend", gen)
	}
}

func TestNew_SelectsVertex(t *testing.T) {
	gen, err := New(context.Background(), Config{
		Model:         "sonnet",
		UseVertex:     true,
		VertexProject: "proj-123",
		TokenSource:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}),
		HTTPClient:    &mockHTTPDoer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := gen.(*vertexBackend); !ok {
		t.Errorf("New() = %T, want *vertexBackend", gen)
	}
}

func TestBackendError_Format(t *testing.T) {
	cause := errors.New("connection refused")
	err := &BackendError{Provider: ProviderAnthropic, Message: "request failed", Cause: cause}

	want := "anthropic backend: request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("BackendError should unwrap to its cause")
	}
}

func TestBackendError_NoCause(t *testing.T) {
	err := &BackendError{Provider: ProviderVertex, Message: "no content"}
	if err.Error() != "vertex backend: no content" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDoJSON_ErrorBodyTruncated(t *testing.T) {
	longBody := strings.Repeat("x", 600)
	doer := &mockHTTPDoer{response: mockResponse(500, longBody)}

	_, err := doJSON(context.Background(), doer, "https://example.invalid/v1", nil, nil)
	if err == nil {
		t.Fatal("doJSON() expected error for status 500")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %q, want status in message", err.Error())
	}
	if strings.Count(err.Error(), "x") > 500 {
		t.Errorf("error body should be truncated to 500 chars, got %d", strings.Count(err.Error(), "x"))
	}
}

package generic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/qwery/internal/faults"
	"github.com/baalimago/qwery/internal/models"
)

// roundTripFunc allows injecting errors in http.Client
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func keyed(key string) models.KeyProvider {
	return func() (string, bool) { return key, key != "" }
}

func testChat() models.Chat {
	return models.Chat{Messages: []models.Message{{Role: "user", Content: "hi"}}}
}

func TestNewCompleter_MissingKeyIsAuthError(t *testing.T) {
	_, err := NewCompleter("m", "http://example.invalid", keyed(""))
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *faults.Error
	if !errors.As(err, &cerr) || cerr.Kind != faults.AuthError {
		t.Fatalf("expected auth error before any request, got: %v", err)
	}
}

func TestCreateRequest_BodyAndHeaders(t *testing.T) {
	c, err := NewCompleter("test-model", "http://example.invalid", keyed("sekret"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c.SetTools([]models.Specification{{
		Name:        "calculator",
		Description: "d",
		Inputs:      &models.InputSchema{Type: "object"},
	}})

	httpReq, err := c.createRequest(context.Background(), testChat(), true)
	if err != nil {
		t.Fatalf("createRequest err: %v", err)
	}
	testboil.FailTestIfDiff(t, httpReq.Header.Get("Content-Type"), "application/json")
	testboil.FailTestIfDiff(t, httpReq.Header.Get("Authorization"), "Bearer sekret")
	testboil.FailTestIfDiff(t, httpReq.Header.Get("Accept"), "text/event-stream")
	testboil.FailTestIfDiff(t, httpReq.Header.Get("Connection"), "keep-alive")

	b, _ := io.ReadAll(httpReq.Body)
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(b))
	}
	if v, ok := body["stream"].(bool); !ok || !v {
		t.Fatalf("expected stream=true, got: %T %v", body["stream"], body["stream"])
	}
	testboil.FailTestIfDiff(t, body["model"].(string), "test-model")
	testboil.FailTestIfDiff(t, body["tool_choice"].(string), "auto")
	streamOpts, ok := body["stream_options"].(map[string]any)
	if !ok {
		t.Fatalf("expected stream_options in body, got: %v", body["stream_options"])
	}
	if v, ok := streamOpts["include_usage"].(bool); !ok || !v {
		t.Fatalf("expected include_usage=true, got: %v", streamOpts["include_usage"])
	}
	toolsV, ok := body["tools"].([]any)
	if !ok || len(toolsV) != 1 {
		t.Fatalf("tools missing in body: %T %v", body["tools"], body["tools"])
	}
	tool0, _ := toolsV[0].(map[string]any)
	testboil.FailTestIfDiff(t, tool0["type"].(string), "function")
	fn, _ := tool0["function"].(map[string]any)
	testboil.FailTestIfDiff(t, fn["name"].(string), "calculator")
}

func TestCreateRequest_NoToolsOmitsToolFields(t *testing.T) {
	c, err := NewCompleter("m", "http://example.invalid", keyed("k"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	httpReq, err := c.createRequest(context.Background(), testChat(), false)
	if err != nil {
		t.Fatalf("createRequest err: %v", err)
	}
	b, _ := io.ReadAll(httpReq.Body)
	bodyStr := string(b)
	for _, field := range []string{"tools", "tool_choice", "stream_options"} {
		if strings.Contains(bodyStr, field) {
			t.Fatalf("expected %q to be omitted, body: %v", field, bodyStr)
		}
	}
	if httpReq.Header.Get("Accept") == "text/event-stream" {
		t.Fatal("blocking request should not ask for an event stream")
	}
}

func TestComplete_HappyPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer ts.Close()

	c, err := NewCompleter("m", ts.URL, keyed("k"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	msg, usage, err := c.Complete(context.Background(), testChat())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, msg.Content, "hello there")
	if usage == nil || usage.TotalTokens != 5 {
		t.Fatalf("expected usage totals, got: %+v", usage)
	}
}

func TestComplete_Non200IsClassified(t *testing.T) {
	testCases := []struct {
		status int
		want   faults.Kind
	}{
		{401, faults.AuthError},
		{429, faults.RateLimited},
		{503, faults.Transient},
		{404, faults.ClientError},
	}
	for _, tc := range testCases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		c, err := NewCompleter("m", ts.URL, keyed("k"))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		_, _, err = c.Complete(context.Background(), testChat())
		ts.Close()
		if err == nil {
			t.Fatalf("expected error for status %v", tc.status)
		}
		cerr := faults.From(err)
		if cerr.Kind != tc.want {
			t.Fatalf("status %v: expected %v, got: %v", tc.status, tc.want, cerr.Kind)
		}
		testboil.FailTestIfDiff(t, cerr.Message, "nope")
	}
}

func TestComplete_NetworkFaultIsTransient(t *testing.T) {
	c, err := NewCompleter("m", "http://example.invalid", keyed("k"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	c.client = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})}
	_, _, err = c.Complete(context.Background(), testChat())
	if err == nil {
		t.Fatal("expected error")
	}
	if faults.From(err).Kind != faults.Transient {
		t.Fatalf("expected transient for network fault, got: %v", err)
	}
}

func TestStreamCompletions_ReturnsWorkingDecoder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\ndata: [DONE]\n\n"))
	}))
	defer ts.Close()

	c, err := NewCompleter("m", ts.URL, keyed("k"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	dec, err := c.StreamCompletions(context.Background(), testChat())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer dec.Close()
	ev, err := dec.Next()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := ev.(string); !ok || got != "Hello" {
		t.Fatalf("expected 'Hello', got: %T %v", ev, ev)
	}
}

package generic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/faults"
	"github.com/baalimago/qwery/internal/models"
)

// requestTimeout bounds one attempt against the completions endpoint.
// The retry engine owns the overall budget.
const requestTimeout = 5 * time.Minute

// Completer issues chat completion requests against an OpenAI style
// endpoint, either blocking or streamed
type Completer struct {
	Model  string
	URL    string
	apiKey string
	client *http.Client
	tools  []ToolSuper
	debug  bool
}

// NewCompleter validates the credential up front, a missing key
// surfaces as an auth error before any request is made
func NewCompleter(model, url string, key models.KeyProvider) (*Completer, error) {
	apiKey, ok := key()
	if !ok || apiKey == "" {
		return nil, &faults.Error{Kind: faults.AuthError, Message: "no api key configured"}
	}
	return &Completer{
		Model:  model,
		URL:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: requestTimeout},
		debug:  misc.Truthy(os.Getenv("DEBUG")),
	}, nil
}

// SetTools configures which tools the next request offers the model.
// Nil or empty offers none, which also omits tool_choice.
func (c *Completer) SetTools(specs []models.Specification) {
	c.tools = nil
	for _, spec := range specs {
		c.tools = append(c.tools, ToolSuper{Type: "function", Function: spec})
	}
}

func (c *Completer) createRequest(ctx context.Context, chat models.Chat, stream bool) (*http.Request, error) {
	reqData := req{
		Model:    c.Model,
		Messages: chat.Messages,
		Stream:   stream,
	}
	if len(c.tools) > 0 {
		reqData.Tools = c.tools
		reqData.ToolChoice = "auto"
	}
	if stream {
		reqData.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	if c.debug {
		ancli.PrintOK(fmt.Sprintf("completer request: %v\n", debug.IndentedJsonFmt(reqData)))
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %v", c.apiKey))
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
		httpReq.Header.Set("Connection", "keep-alive")
	}
	return httpReq, nil
}

// do executes the request and classifies every failure mode. The
// returned response is only non-nil on status 200.
func (c *Completer) do(httpReq *http.Request) (*http.Response, error) {
	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, faults.NewNetwork(err)
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		return nil, faults.New(res.StatusCode, body)
	}
	return res, nil
}

// Complete runs one blocking, non-streamed completion
func (c *Completer) Complete(ctx context.Context, chat models.Chat) (models.Message, *models.Usage, error) {
	httpReq, err := c.createRequest(ctx, chat, false)
	if err != nil {
		return models.Message{}, nil, err
	}
	res, err := c.do(httpReq)
	if err != nil {
		return models.Message{}, nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return models.Message{}, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Message{}, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Message{}, resp.Usage, fmt.Errorf("response contained no choices")
	}
	return resp.Choices[0].Message, resp.Usage, nil
}

// StreamCompletions runs one streamed completion. The returned Decoder
// owns the response body.
func (c *Completer) StreamCompletions(ctx context.Context, chat models.Chat) (*Decoder, error) {
	httpReq, err := c.createRequest(ctx, chat, true)
	if err != nil {
		return nil, err
	}
	res, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	return NewDecoder(res.Body), nil
}

package generic

import (
	"github.com/baalimago/qwery/internal/models"
)

// req is the chat completions request body. Field shapes are load
// bearing, vendors reject bodies which deviate from them.
type req struct {
	Model         string           `json:"model"`
	Messages      []models.Message `json:"messages"`
	Stream        bool             `json:"stream"`
	Tools         []ToolSuper      `json:"tools,omitempty"`
	ToolChoice    any              `json:"tool_choice,omitempty"`
	StreamOptions *streamOptions   `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type ToolSuper struct {
	Type     string               `json:"type"`
	Function models.Specification `json:"function"`
}

// chatCompletionChunk is one streamed record. Usage only appears on the
// last data-bearing chunk when stream_options.include_usage is set, but
// some vendors repeat it, latest wins.
type chatCompletionChunk struct {
	Choices []Choice      `json:"choices"`
	Usage   *models.Usage `json:"usage"`
}

type Choice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type Delta struct {
	Content   string      `json:"content"`
	Role      string      `json:"role"`
	ToolCalls []ToolsCall `json:"tool_calls"`
}

type ToolsCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function Func   `json:"function"`
}

type Func struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// completionResponse is the blocking, non-streamed response shape
type completionResponse struct {
	Choices []respChoice  `json:"choices"`
	Usage   *models.Usage `json:"usage"`
}

type respChoice struct {
	Message      models.Message `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

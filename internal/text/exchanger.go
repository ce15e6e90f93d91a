package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/faults"
	"github.com/baalimago/qwery/internal/models"
	"github.com/baalimago/qwery/internal/text/generic"
	"github.com/baalimago/qwery/internal/tools"
)

// emptyResponsePadding substitutes empty tool output. Chatgpt doesn't
// like responses which yield no output, even if they're valid.
const emptyResponsePadding = "<EMPTY-RESPONSE>"

type Options struct {
	// Model to use for every sub-exchange
	Model string
	// ToolNames is the subset of registered tools offered to the model
	ToolNames []string
	// Stream toggles between one blocking request and a streamed one
	Stream bool
	// InteractiveApproval gates every tool invocation behind Ask
	InteractiveApproval bool
	// SystemPrompt is prepended when the chat has no system message
	SystemPrompt string
}

// Result of one full exchange. Chat is the complete transcript, owned
// by the caller. Usage holds the final sub-exchange's totals.
type Result struct {
	Content string
	Chat    models.Chat
	Usage   models.Usage
}

// Exchanger orchestrates one user-prompt-to-final-answer cycle,
// possibly spanning multiple round trips due to tool calls. One
// exchange is processed strictly sequentially.
type Exchanger struct {
	// Retrier wraps every sub-exchange
	Retrier faults.Retrier
	// Usage receives one record per sub-exchange, fire-and-forget
	Usage models.UsageSink
	// Ask gates tool invocations under interactive approval
	Ask models.Approver
	// OnDelta receives content fragments as produced in streaming mode
	OnDelta func(token string)

	comp  *generic.Completer
	debug bool
}

func NewExchanger(comp *generic.Completer) *Exchanger {
	return &Exchanger{
		comp:  comp,
		Usage: models.NoopUsageSink{},
		debug: misc.Truthy(os.Getenv("DEBUG")),
	}
}

// Exchange sends the chat, dispatches any tool calls the model
// requests and issues exactly one follow-up per batch of calls, never
// recursively. The follow-up offers no tools, so the conversation
// always terminates after at most two sub-exchanges.
func (e *Exchanger) Exchange(ctx context.Context, chat models.Chat, opts Options) (Result, error) {
	// Snapshot so appends never mutate the caller's backing array
	chat.Messages = slices.Clone(chat.Messages)
	if opts.Model != "" {
		e.comp.Model = opts.Model
	}
	if opts.SystemPrompt != "" {
		if _, err := chat.FirstSystemMessage(); err != nil {
			chat.Messages = append([]models.Message{{Role: "system", Content: opts.SystemPrompt}}, chat.Messages...)
		}
	}
	specs, err := tools.Specifications(opts.ToolNames)
	if err != nil {
		return Result{Chat: chat}, fmt.Errorf("failed to resolve tools: %w", err)
	}

	sub, err := e.subExchange(ctx, chat, specs, opts.Stream)
	e.recordUsage("query", sub.usage)
	if err != nil {
		return Result{Chat: chat}, fmt.Errorf("failed to query: %w", err)
	}
	if e.debug {
		ancli.PrintOK(fmt.Sprintf("assistant turn: %v\n", debug.IndentedJsonFmt(sub.msg)))
	}

	if len(sub.msg.ToolCalls) == 0 {
		chat.Messages = append(chat.Messages, models.Message{Role: "assistant", Content: sub.msg.Content})
		return Result{Content: sub.msg.Content, Chat: chat, Usage: deref(sub.usage)}, nil
	}

	for i, call := range sub.msg.ToolCalls {
		out := tools.Dispatch(call, opts.InteractiveApproval, e.Ask)
		if out == "" {
			out = emptyResponsePadding
		}
		assistantCall := models.Message{Role: "assistant", ToolCalls: []models.Call{call}}
		if i == 0 {
			assistantCall.Content = sub.msg.Content
		}
		chat.Messages = append(chat.Messages,
			assistantCall,
			models.Message{Role: "tool", Content: out, ToolCallID: call.ID},
		)
	}

	followUp, err := e.subExchange(ctx, chat, nil, opts.Stream)
	e.recordUsage("followup", followUp.usage)
	if err != nil {
		return Result{Chat: chat}, fmt.Errorf("failed to query after tool calls: %w", err)
	}
	chat.Messages = append(chat.Messages, models.Message{Role: "assistant", Content: followUp.msg.Content})
	return Result{Content: followUp.msg.Content, Chat: chat, Usage: deref(followUp.usage)}, nil
}

type subResult struct {
	msg   models.Message
	usage *models.Usage
}

// subExchange runs one retry-wrapped request/response pair
func (e *Exchanger) subExchange(ctx context.Context, chat models.Chat, specs []models.Specification, stream bool) (subResult, error) {
	e.comp.SetTools(specs)
	return faults.Do(ctx, e.Retrier, func(ctx context.Context) (subResult, error) {
		if stream {
			return e.streamOnce(ctx, chat)
		}
		msg, usage, err := e.comp.Complete(ctx, chat)
		return subResult{msg: msg, usage: usage}, err
	})
}

// streamOnce consumes one streamed sub-exchange to completion,
// accumulating content and merging tool call fragments by call index
func (e *Exchanger) streamOnce(ctx context.Context, chat models.Chat) (subResult, error) {
	dec, err := e.comp.StreamCompletions(ctx, chat)
	if err != nil {
		return subResult{}, err
	}
	defer dec.Close()

	var fullMsg strings.Builder
	frags := map[int]*models.Call{}
	var order []int
	var usage *models.Usage
loop:
	for {
		if ctx.Err() != nil {
			return subResult{}, ctx.Err()
		}
		ev, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return subResult{}, fmt.Errorf("completion stream error: %w", err)
		}
		switch cast := ev.(type) {
		case string:
			fullMsg.WriteString(cast)
			if e.OnDelta != nil {
				e.OnDelta(cast)
			}
		case models.ToolDelta:
			call, ok := frags[cast.Index]
			if !ok {
				call = &models.Call{Type: "function"}
				frags[cast.Index] = call
				order = append(order, cast.Index)
			}
			// ID and name only appear on the first fragment of a call,
			// the arguments json is streamed chunk by chunk
			if cast.ID != "" {
				call.ID = cast.ID
			}
			if cast.Name != "" {
				call.Function.Name = cast.Name
			}
			call.Function.Arguments += cast.Arguments
		case models.StopEvent:
			usage = cast.Usage
			break loop
		}
	}

	msg := models.Message{Role: "assistant", Content: fullMsg.String()}
	slices.Sort(order)
	for _, idx := range order {
		msg.ToolCalls = append(msg.ToolCalls, *frags[idx])
	}
	return subResult{msg: msg, usage: usage}, nil
}

func (e *Exchanger) recordUsage(command string, usage *models.Usage) {
	if usage == nil || e.Usage == nil {
		return
	}
	e.Usage.Record(command, e.comp.Model, *usage)
}

func deref(u *models.Usage) models.Usage {
	if u == nil {
		return models.Usage{}
	}
	return *u
}

package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/models"
)

// Registry is the global registry of available LLM tools. Read-only
// after Init.
var Registry = NewRegistry()

// CancelledText is returned when an interactive approval declines the
// call, the handler is never invoked
const CancelledText = "Tool call cancelled by user"

// Init initializes the global Registry with the built in tools. If the
// Registry has already been initialized, it simply returns.
func Init() {
	if Registry.hasBeenInit {
		return
	}
	Registry.hasBeenInit = true
	Registry.Set(Calculator.Name, Calculator)
	Registry.Set(Hash.Name, Hash)
	Registry.Set(Date.Name, Date)
	Registry.Set(Random.Name, Random)
	Registry.Set(WebsiteText.Name, WebsiteText)
}

// Specifications resolves the named subset of registered tools, to be
// offered to the model
func Specifications(names []string) ([]models.Specification, error) {
	specs := make([]models.Specification, 0, len(names))
	for _, name := range names {
		t, exists := Registry.Get(name)
		if !exists {
			return nil, fmt.Errorf("unknown tool: '%v'", name)
		}
		specs = append(specs, t.Specification())
	}
	return specs, nil
}

// Dispatch the call, gathering both error and output in the same
// string. Unknown tools, malformed arguments and handler faults all
// become textual results, never errors, so that a misbehaving model
// can't abort the conversation. When interactive, ask gates the
// invocation.
func Dispatch(call models.Call, interactive bool, ask models.Approver) string {
	t, exists := Registry.Get(call.Function.Name)
	if !exists {
		return "ERROR: unknown tool call: " + call.Function.Name
	}
	if misc.Truthy(os.Getenv("DEBUG_CALL")) {
		ancli.Noticef("dispatching call: %v", debug.IndentedJsonFmt(call))
	}

	input := models.Input{}
	if args := strings.TrimSpace(call.Function.Arguments); args != "" {
		if err := json.Unmarshal([]byte(args), &input); err != nil {
			return fmt.Sprintf("ERROR: malformed arguments for tool: %v, error: %v", call.Function.Name, err)
		}
	}
	if err := validate(t.Specification(), input); err != nil {
		return fmt.Sprintf("ERROR: invalid arguments for tool: %v, error: %v", call.Function.Name, err)
	}

	if interactive {
		if ask == nil || !ask(call.Function.Name, call.Function.Arguments) {
			return CancelledText
		}
	}

	out, err := t.Call(input)
	if err != nil {
		return fmt.Sprintf("ERROR: failed to run tool: %v, error: %v", call.Function.Name, err)
	}
	return out
}

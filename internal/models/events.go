package models

// CompletionEvent is one unit pulled from a completions stream. It's one of:
//   - string, a piece of the message content
//   - ToolDelta, a fragment of some tool call
//   - StopEvent, the stream has completed
type CompletionEvent any

// ToolDelta is an incremental fragment of a tool call. Fragments sharing
// the same Index belong to the same call and should have their Arguments
// concatenated by the consumer. ID and Name are only set on the first
// fragment of a call.
type ToolDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// StopEvent signals stream completion. Usage holds the last usage totals
// seen on the stream, nil if the vendor never sent any.
type StopEvent struct {
	Usage *Usage
}

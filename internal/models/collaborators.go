package models

// ProgressReporter is a caller owned side channel for human readable
// progress text. Implementations must tolerate being called from
// non-interactive contexts, no-op is fine.
type ProgressReporter interface {
	Report(msg string)
	Clear()
}

type NoopProgress struct{}

func (NoopProgress) Report(string) {}

func (NoopProgress) Clear() {}

// Approver asks for a yes/no verdict before a tool call is invoked.
type Approver func(toolName, arguments string) bool

// KeyProvider returns the current api key, false when none is configured.
type KeyProvider func() (string, bool)

// UsageSink records usage totals per sub-exchange. Fire-and-forget, a
// failing sink must never affect the exchange result.
type UsageSink interface {
	Record(command, model string, usage Usage)
}

type NoopUsageSink struct{}

func (NoopUsageSink) Record(string, string, Usage) {}

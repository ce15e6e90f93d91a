package store

import (
	"fmt"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/models"
)

type UsageEntry struct {
	Time    time.Time    `json:"time"`
	Command string       `json:"command"`
	Model   string       `json:"model"`
	Usage   models.Usage `json:"usage"`
}

// UsageRecorder appends one entry per sub-exchange to a file log.
// Recording is fire-and-forget, a failing write must never affect the
// exchange it records.
type UsageRecorder struct {
	log *FileLog[UsageEntry]
}

func NewUsageRecorder(path string) *UsageRecorder {
	return &UsageRecorder{log: NewFileLog[UsageEntry](path)}
}

func (u *UsageRecorder) Record(command, model string, usage models.Usage) {
	err := u.log.Append(UsageEntry{
		Time:    time.Now(),
		Command: command,
		Model:   model,
		Usage:   usage,
	})
	if err != nil && misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintWarn(fmt.Sprintf("failed to record usage: %v\n", err))
	}
}

func (u *UsageRecorder) List() ([]UsageEntry, error) {
	return u.log.List()
}

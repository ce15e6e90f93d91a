package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/baalimago/qwery/internal/faults"
	"github.com/baalimago/qwery/internal/models"
	"github.com/baalimago/qwery/internal/store"
	"github.com/baalimago/qwery/internal/text"
	"github.com/baalimago/qwery/internal/text/generic"
	"github.com/baalimago/qwery/internal/tools"
	"github.com/baalimago/qwery/internal/utils"
)

const usage = `qwery - (q)uery an ai model, with tools

Prerequisites:
  - Set the QWERY_API_KEY or OPENAI_API_KEY environment variable to your API key
  - (Optional) Set the NO_COLOR environment variable to disable ansi color output

Environment:
  QWERY_URL      Completions endpoint. (default '%v')
  QWERY_MODEL    Chat model to use. (default '%v')
  QWERY_TOOLS    Comma separated tool names to offer the model. (default: all registered)
  QWERY_STREAM   Set to truthy to print tokens as they arrive.
  QWERY_APPROVE  Set to truthy to approve each tool call before it runs.
  DEBUG          Set to truthy for debug output.

Usage: qwery <prompt>

Examples:
  - qwery "What's 2+2? Use the calculator."
  - QWERY_STREAM=1 qwery "Summarize the text on https://example.com"
`

const (
	defaultURL   = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
	probeURL     = "https://api.openai.com"
	systemPrompt = "You are an assistant in a CLI environment. Answer concisely. Use the provided tools when they help answer the question."
)

func envOr(key, dflt string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return dflt
}

func apiKey() (string, bool) {
	for _, key := range []string{"QWERY_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
	}
	return "", false
}

func toolNames() []string {
	if v := os.Getenv("QWERY_TOOLS"); v != "" {
		return strings.Split(v, ",")
	}
	var names []string
	for name := range tools.Registry.All() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func usageLogPath() (string, error) {
	confDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find config dir: %w", err)
	}
	qweryDir := filepath.Join(confDir, ".qwery")
	if err := os.MkdirAll(qweryDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return filepath.Join(qweryDir, "usage.json"), nil
}

func run(args []string) int {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		fmt.Printf(usage, defaultURL, defaultModel)
		return 1
	}

	comp, err := generic.NewCompleter(envOr("QWERY_MODEL", defaultModel), envOr("QWERY_URL", defaultURL), apiKey)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to setup: %v\n", err))
		return 1
	}
	tools.Init()

	exch := text.NewExchanger(comp)
	exch.Retrier = faults.Retrier{
		Prog:  utils.TermProgress{Out: os.Stdout},
		Probe: faults.ConnectivityProbe(probeURL),
	}
	exch.Ask = utils.AskYesNo
	if logPath, err := usageLogPath(); err == nil {
		exch.Usage = store.NewUsageRecorder(logPath)
	} else {
		ancli.PrintWarn(fmt.Sprintf("failed to setup usage log: %v\n", err))
	}
	stream := misc.Truthy(os.Getenv("QWERY_STREAM"))
	if stream {
		exch.OnDelta = func(token string) { fmt.Print(token) }
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { shutdown.Monitor(cancel) }()

	chat := models.Chat{
		ID:       "qwery",
		Created:  time.Now(),
		Messages: []models.Message{{Role: "user", Content: prompt}},
	}
	res, err := exch.Exchange(ctx, chat, text.Options{
		ToolNames:           toolNames(),
		Stream:              stream,
		InteractiveApproval: misc.Truthy(os.Getenv("QWERY_APPROVE")),
		SystemPrompt:        systemPrompt,
	})
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("failed to run exchange: %v\n", err))
		return 1
	}
	if stream {
		fmt.Println()
	} else {
		fmt.Println(res.Content)
	}
	return 0
}

func main() {
	ancli.SetupSlog()
	os.Exit(run(os.Args[1:]))
}

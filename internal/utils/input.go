package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

var ErrUserInitiatedExit = errors.New("user initiated exit")

// AskYesNo prompts for tool call approval on the controlling terminal.
// Anything but an explicit yes declines.
func AskYesNo(toolName, arguments string) bool {
	ancli.Noticef("about to run tool '%v' with arguments: %v\n", toolName, arguments)
	fmt.Print("Proceed? [y/N]: ")
	answer, err := readTTYLine()
	if err != nil {
		ancli.PrintWarn(fmt.Sprintf("failed to read approval: %v\n", err))
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// readTTYLine reads one line of user input directly from the terminal,
// returning early on interrupt
func readTTYLine() (string, error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	inputChan := make(chan string)
	errChan := make(chan error)

	go func() {
		// Open /dev/tty for direct terminal access, stdin may be a pipe
		tty, err := os.Open("/dev/tty")
		if err != nil {
			errChan <- fmt.Errorf("cannot open terminal: %w", err)
			return
		}
		defer tty.Close()
		line, err := bufio.NewReader(tty).ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- line
	}()

	select {
	case <-sigChan:
		return "", ErrUserInitiatedExit
	case err := <-errChan:
		return "", fmt.Errorf("failed to read user input: %w", err)
	case line := <-inputChan:
		return line, nil
	}
}

package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"golang.org/x/term"
)

// TermProgress writes progress text on the current terminal line,
// overwriting itself on each report
type TermProgress struct {
	Out io.Writer
}

func (t TermProgress) width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

func (t TermProgress) Report(msg string) {
	t.clearLine()
	fmt.Fprintf(t.Out, "\r%v", ancli.ColoredMessage(ancli.CYAN, msg))
}

func (t TermProgress) Clear() {
	t.clearLine()
}

func (t TermProgress) clearLine() {
	w := t.width()
	if w <= 0 {
		fmt.Fprint(t.Out, "\r")
		return
	}
	fmt.Fprintf(t.Out, "\r%v\r", strings.Repeat(" ", w))
}

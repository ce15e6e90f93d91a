package generic

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/models"
)

var dataPrefix = []byte("data: ")

const doneSentinel = "[DONE]"

// Decoder consumes a server-sent-event shaped completions stream. It is
// a lazy, single-pass pull sequence: the underlying body is only read
// when Next is called, partial records are buffered across read
// boundaries and malformed records are skipped silently. Not safe for
// concurrent use, not restartable.
type Decoder struct {
	br      *bufio.Reader
	body    io.ReadCloser
	pending []models.CompletionEvent
	usage   *models.Usage
	done    bool
	debug   bool
}

// NewDecoder takes ownership of body, it is closed when the stream
// completes or on Close
func NewDecoder(body io.ReadCloser) *Decoder {
	return &Decoder{
		br:    bufio.NewReader(body),
		body:  body,
		debug: misc.Truthy(os.Getenv("DEBUG")),
	}
}

// Next pulls the next event off the stream. The terminal event is a
// models.StopEvent carrying the latest seen usage totals, every call
// after it returns io.EOF. A transport read failure before the done
// sentinel is returned as an error and ends the stream.
func (d *Decoder) Next() (models.CompletionEvent, error) {
	if len(d.pending) > 0 {
		ev := d.pending[0]
		d.pending = d.pending[1:]
		return ev, nil
	}
	if d.done {
		return nil, io.EOF
	}
	for {
		token, err := d.br.ReadBytes('\n')
		if err != nil {
			d.done = true
			d.body.Close()
			if err == io.EOF {
				return nil, fmt.Errorf("stream ended before done sentinel: %w", io.ErrUnexpectedEOF)
			}
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}
		token = bytes.TrimPrefix(token, dataPrefix)
		token = bytes.TrimSpace(token)
		if len(token) == 0 {
			// Blank record separator
			continue
		}
		if string(token) == doneSentinel {
			d.done = true
			d.body.Close()
			return models.StopEvent{Usage: d.usage}, nil
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal(token, &chunk); err != nil {
			// Expect some failing unmarshalls, which seems to be fine
			if d.debug {
				ancli.PrintWarn(fmt.Sprintf("failed to unmarshal token: %v, err: %v\n", string(token), err))
			}
			continue
		}
		if chunk.Usage != nil {
			d.usage = chunk.Usage
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				d.pending = append(d.pending, choice.Delta.Content)
			}
			for _, tc := range choice.Delta.ToolCalls {
				d.pending = append(d.pending, models.ToolDelta{
					Index:     tc.Index,
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		}
		if len(d.pending) > 0 {
			ev := d.pending[0]
			d.pending = d.pending[1:]
			return ev, nil
		}
	}
}

// Close releases the underlying body. Safe to call multiple times.
func (d *Decoder) Close() error {
	d.done = true
	return d.body.Close()
}

package faults

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/qwery/internal/models"
)

const (
	defaultMaxAttempts = 4
	defaultBaseWait    = time.Second
	probeTimeout       = 3 * time.Second
)

// Retrier wraps an operation in a classify -> wait -> retry/escalate
// loop. It holds no cross-call state, all knobs are caller owned.
type Retrier struct {
	// MaxAttempts caps total attempts, defaults to 4
	MaxAttempts int
	// BaseWait scales the backoff, defaults to 1s
	BaseWait time.Duration
	// Prog receives one human readable report per retry and a Clear on
	// completion. Nil means no-op.
	Prog models.ProgressReporter
	// Probe is a short, independently timed connectivity check, ran
	// before the last transient retry. Probe failure escalates as
	// offline instead of burning the final attempt.
	Probe func(context.Context) error
}

// Do runs op until it succeeds, the retry budget is exhausted, or a
// fatal failure kind escalates.
func Do[T any](ctx context.Context, r Retrier, op func(context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseWait := r.BaseWait
	if baseWait <= 0 {
		baseWait = defaultBaseWait
	}
	var prog models.ProgressReporter = models.NoopProgress{}
	if r.Prog != nil {
		prog = r.Prog
	}
	defer prog.Clear()

	debug := misc.Truthy(os.Getenv("DEBUG"))
	var lastErr *Error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		cerr := From(err)
		lastErr = cerr
		if debug {
			ancli.Warnf("attempt %v/%v failed: %v\n", attempt+1, maxAttempts, cerr)
		}

		switch cerr.Kind {
		case AuthError:
			return zero, fmt.Errorf("%w. Set your api key and try again", cerr)
		case ClientError:
			return zero, cerr
		}
		if attempt == maxAttempts-1 {
			break
		}

		var wait time.Duration
		switch cerr.Kind {
		case RateLimited:
			wait = baseWait * time.Duration(attempt+1) * 2
		default:
			// Transient or Unknown. Don't burn the final attempt when
			// there's no connectivity at all.
			if attempt == maxAttempts-2 && r.Probe != nil {
				probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
				perr := r.Probe(probeCtx)
				cancel()
				if perr != nil {
					return zero, fmt.Errorf("you seem to be offline: %w", perr)
				}
			}
			wait = baseWait * time.Duration(attempt+1)
		}

		prog.Report(fmt.Sprintf("attempt %v/%v failed: %v, retrying in %v", attempt+1, maxAttempts, cerr.Message, wait))
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// sleep until the wait has passed or ctx is done, whichever comes first
func sleep(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ConnectivityProbe returns a probe which HEADs url. The returned probe
// respects the deadline on its context rather than the main request's.
func ConnectivityProbe(url string) func(context.Context) error {
	client := &http.Client{Timeout: probeTimeout}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create probe request: %w", err)
		}
		res, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("probe failed: %w", err)
		}
		res.Body.Close()
		return nil
	}
}

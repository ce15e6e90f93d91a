package tools

import (
	"strconv"
	"testing"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/qwery/internal/models"
)

func TestDate_Call(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	pre := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = pre })

	got, err := Date.Call(models.Input{"utc": true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "2024-03-01T12:30:00Z")

	got, err = Date.Call(models.Input{"unix": true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, got, strconv.FormatInt(fixed.Unix(), 10))

	got, err = Date.Call(models.Input{"format": "2006-01-02", "utc": true})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "2024-03-01")
}

func TestDate_ReadsClockEveryCall(t *testing.T) {
	calls := 0
	pre := now
	now = func() time.Time {
		calls++
		return time.Unix(int64(calls), 0)
	}
	t.Cleanup(func() { now = pre })

	first, _ := Date.Call(models.Input{"unix": true})
	second, _ := Date.Call(models.Input{"unix": true})
	if first == second {
		t.Fatalf("expected fresh clock reads, got %v twice", first)
	}
	testboil.FailTestIfDiff(t, calls, 2)
}

func TestRandom_Call(t *testing.T) {
	pre := intN
	intN = func(n int64) int64 { return n - 1 }
	t.Cleanup(func() { intN = pre })

	got, err := Random.Call(models.Input{"min": float64(3), "max": float64(7)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	testboil.FailTestIfDiff(t, got, "7")
}

func TestRandom_StaysWithinRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		got, err := Random.Call(models.Input{"min": float64(1), "max": float64(6)})
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		v, err := strconv.ParseInt(got, 10, 64)
		if err != nil {
			t.Fatalf("expected integer output, got: %q", got)
		}
		if v < 1 || v > 6 {
			t.Fatalf("value out of range: %v", v)
		}
	}
}

func TestRandom_MinAboveMax(t *testing.T) {
	if _, err := Random.Call(models.Input{"min": float64(5), "max": float64(1)}); err == nil {
		t.Fatal("expected error when min exceeds max")
	}
}

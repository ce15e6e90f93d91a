package tools

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/qwery/internal/models"
)

func TestRegistry_AllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Set("rec", &recordingTool{spec: models.Specification{Name: "rec"}})

	all := r.All()
	testboil.FailTestIfDiff(t, len(all), 1)
	delete(all, "rec")

	if _, ok := r.Get("rec"); !ok {
		t.Fatal("mutating the copy must not affect the registry")
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.Set("rec", &recordingTool{spec: models.Specification{Name: "rec"}})
	r.Reset()
	testboil.FailTestIfDiff(t, len(r.All()), 0)
}

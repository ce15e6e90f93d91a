package tools

import (
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
	"github.com/baalimago/qwery/internal/models"
)

func TestHash_Call(t *testing.T) {
	testCases := []struct {
		algorithm string
		data      string
		want      string
	}{
		{"sha256", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha1", "abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"md5", "abc", "900150983cd24fb0d6963f7d28e17f72"},
	}
	for _, tc := range testCases {
		t.Run(tc.algorithm, func(t *testing.T) {
			got, err := Hash.Call(models.Input{"algorithm": tc.algorithm, "data": tc.data})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			testboil.FailTestIfDiff(t, got, tc.want)
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	input := models.Input{"algorithm": "sha256", "data": "abc"}
	first, err := Hash.Call(input)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := Hash.Call(input)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		testboil.FailTestIfDiff(t, got, first)
	}
}

func TestHash_UnsupportedAlgorithm(t *testing.T) {
	if _, err := Hash.Call(models.Input{"algorithm": "crc32", "data": "abc"}); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

package tools

import "math/rand"

func randIntN(n int64) int64 {
	return rand.Int63n(n)
}

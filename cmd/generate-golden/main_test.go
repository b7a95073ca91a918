package main

import (
	"strings"
	"testing"

	"github.com/agbru/picalc/internal/testutil"
)

func TestChudnovskyPiMatchesReference(t *testing.T) {
	t.Parallel()
	ref := strings.Replace(testutil.ReferencePi(t), ".", "", 1)
	for _, n := range []int{20, 300, 2000} {
		got := chudnovskyPi(n + guardDigits).String()[:1+n]
		if got != ref[:1+n] {
			t.Errorf("chudnovskyPi(%d) diverges from the reference", n)
		}
	}
}

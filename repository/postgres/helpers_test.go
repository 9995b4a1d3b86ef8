package postgres

import "testing"

func TestLimitArgLeavesZeroUnbounded(t *testing.T) {
	for _, limit := range []int{0, -5} {
		if got := limitArg(limit); got != nil {
			t.Errorf("limitArg(%d) = %v, want NULL", limit, got)
		}
	}
	if got := limitArg(1500); got != 1500 {
		t.Errorf("limitArg(1500) = %v, want 1500", got)
	}
}

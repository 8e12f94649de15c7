package roster

import (
	"context"
	"testing"
)

// TestStagedSolveNeverBreachesBlockShape exercises the staged solver's
// block-shape gating end to end: the validator's block_shape check (no 5
// consecutive nights, 8 consecutive working days or 5 consecutive long
// shifts) stays clean. Singleton nights are not part of that check.
func TestStagedSolveNeverBreachesBlockShape(t *testing.T) {
	in := smokeInput()
	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if breaches, ok := out.Breaches.ByInvariant["block_shape"]; ok {
		t.Errorf("expected no block_shape breaches from a staged solve, got %d: %+v", len(breaches), breaches)
	}
}

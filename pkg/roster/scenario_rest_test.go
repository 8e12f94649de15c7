package roster

import (
	"context"
	"testing"
)

// TestStagedSolveNeverBreachesRestAfterNights exercises property 4: the
// two days after a night block's end must be OFF or LTFT. Every staged
// stage gates new placements on restOK against prior commitments, so no
// violation should ever surface in the independent validator pass.
func TestStagedSolveNeverBreachesRestAfterNights(t *testing.T) {
	in := smokeInput()
	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if breaches, ok := out.Breaches.ByInvariant["rest_after_nights"]; ok {
		t.Errorf("expected no rest_after_nights breaches from a staged solve, got %d: %+v", len(breaches), breaches)
	}
}

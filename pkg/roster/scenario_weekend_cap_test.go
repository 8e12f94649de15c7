package roster

import (
	"context"
	"testing"
)

// TestStagedSolveRespectsWeekendCap exercises property 6 over the 2-week
// smoke fixture: each person may work at most ceil(N_weekends*WTE/2)
// weekends, which is 1 of the 2 weekends at WTE 1.0, and the independent
// validator pass must report no weekend_cap breach.
func TestStagedSolveRespectsWeekendCap(t *testing.T) {
	in := smokeInput()
	out, err := Solve(context.Background(), in, stagedParams())
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if breaches, ok := out.Breaches.ByInvariant["weekend_cap"]; ok {
		t.Errorf("expected no weekend_cap breaches over a 2-weekend horizon, got %d: %+v", len(breaches), breaches)
	}
}

package catalogue

import "testing"

func TestLookupKnownCodes(t *testing.T) {
	for _, e := range All() {
		got, ok := Lookup(e.Code)
		if !ok {
			t.Fatalf("Lookup(%s) missing from table", e.Code)
		}
		if got != e {
			t.Fatalf("Lookup(%s) = %+v, want %+v", e.Code, got, e)
		}
	}
}

func TestLookupUnknownCode(t *testing.T) {
	if _, ok := Lookup(Code("NOT_REAL")); ok {
		t.Fatal("expected unknown code to miss")
	}
}

func TestMandatoryCoverCodesCountTowardCover(t *testing.T) {
	for _, c := range MandatoryCoverCodes() {
		if !CountsTowardCover(c) {
			t.Errorf("%s should count toward cover", c)
		}
	}
}

func TestLongShiftCodes(t *testing.T) {
	want := map[Code]bool{LDR: true, LDS: true, NR: true, NS: true, CMD: true, CMN: true}
	got := LongShiftCodes()
	if len(got) != len(want) {
		t.Fatalf("LongShiftCodes() = %v, want 6 entries", got)
	}
	for _, c := range got {
		if !want[c] {
			t.Errorf("unexpected long shift code %s", c)
		}
		if !IsLong(c) {
			t.Errorf("IsLong(%s) = false, want true", c)
		}
	}
	if IsLong(SD) {
		t.Error("SD should not be a long shift")
	}
}

func TestWorkingCodesExcludesLocumAndZeroHour(t *testing.T) {
	working := WorkingCodes()
	for _, c := range working {
		if c == LOC {
			t.Error("WorkingCodes() must not include LOC")
		}
		if c == OFF || c == LTFT {
			t.Errorf("WorkingCodes() must not include zero-hour code %s", c)
		}
	}
	if !IsWorking(LV) {
		t.Error("LV counts as working (9h)")
	}
	if IsWorking(OFF) {
		t.Error("OFF must not count as working")
	}
	if IsWorking(LOC) {
		t.Error("LOC must never count as working: it is never assigned to a person")
	}
}

func TestIsNight(t *testing.T) {
	for _, c := range []Code{NR, NS, CMN} {
		if !IsNight(c) {
			t.Errorf("IsNight(%s) = false, want true", c)
		}
	}
	if IsNight(LDR) {
		t.Error("LDR is not a night code")
	}
}

func TestCanonicalizeLegacyCodes(t *testing.T) {
	cases := []struct {
		in    Code
		grade Grade
		want  Code
	}{
		{"LD", GradeRegistrar, LDR},
		{"LD", GradeSHO, LDS},
		{"N", GradeRegistrar, NR},
		{"N", GradeSHO, NS},
		{LDR, GradeRegistrar, LDR},
		{SD, GradeSHO, SD},
	}
	for _, tc := range cases {
		if got := Canonicalize(tc.in, tc.grade); got != tc.want {
			t.Errorf("Canonicalize(%s, %s) = %s, want %s", tc.in, tc.grade, got, tc.want)
		}
	}
}

func TestGradeRequirementEnforcement(t *testing.T) {
	if GradeRequirement(LDR) != GradeRegistrar {
		t.Error("LDR requires Registrar grade")
	}
	if GradeRequirement(SD) != "" {
		t.Error("SD has no grade requirement")
	}
}

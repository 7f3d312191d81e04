package core

import "testing"

func TestFailedStatusAndParseStatus(t *testing.T) {
	status := FailedStatus(ReasonInsufficientText)
	if status != "failed:insufficient_text" {
		t.Fatalf("expected failed:insufficient_text, got %s", status)
	}

	base, reason, ok := ParseStatus(status)
	if base != "failed" || reason != "insufficient_text" || !ok {
		t.Fatalf("unexpected parse: base=%s reason=%s ok=%v", base, reason, ok)
	}

	base, reason, ok = ParseStatus(StatusCompleted)
	if base != "completed" || reason != "" || ok {
		t.Fatalf("unexpected parse for completed: base=%s reason=%s ok=%v", base, reason, ok)
	}
}

func TestRetryable(t *testing.T) {
	cases := map[string]bool{
		FailedStatus(ReasonInsufficientText): true,
		FailedStatus(ReasonFileTooLarge):      false,
		StatusCompleted:                       false,
		StatusProcessing:                      false,
	}
	for status, want := range cases {
		if got := Retryable(status); got != want {
			t.Errorf("Retryable(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestExperienceYears(t *testing.T) {
	five := "5 years"
	r := &Resume{Experience: &five}
	years, ok := r.ExperienceYears()
	if !ok || years != 5 {
		t.Fatalf("expected 5 years, got %d ok=%v", years, ok)
	}

	r2 := &Resume{}
	if _, ok := r2.ExperienceYears(); ok {
		t.Fatalf("expected no experience to parse")
	}

	junk := "fresher"
	r3 := &Resume{Experience: &junk}
	if _, ok := r3.ExperienceYears(); ok {
		t.Fatalf("expected non-numeric experience to fail parsing")
	}
}

func TestTierForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  FitTier
	}{
		{0.95, FitPerfect},
		{0.85, FitPerfect},
		{0.80, FitGood},
		{0.70, FitGood},
		{0.60, FitPartial},
		{0.50, FitPartial},
		{0.2, FitLow},
	}
	for _, c := range cases {
		if got := TierForScore(c.score); got != c.want {
			t.Errorf("TierForScore(%v) = %v, want %v", c.score, got, c.want)
		}
	}
}

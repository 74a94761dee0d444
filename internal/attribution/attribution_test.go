package attribution

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEvaluateWindowBoundaries(t *testing.T) {
	t.Parallel()

	sample := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	storeID := uuid.New()

	cases := []struct {
		name       string
		purchase   time.Time
		windowDays int
		attributed bool
		days       int
		reason     string
	}{
		{"same day", sample.Add(2 * time.Hour), 30, true, 0, ReasonAttributed},
		{"day one across midnight", time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC), 30, true, 1, ReasonAttributed},
		{"last day of window", sample.AddDate(0, 0, 30), 30, true, 30, ReasonAttributed},
		{"one day past window", sample.AddDate(0, 0, 31), 30, false, 31, ReasonOutsideWindow},
		{"before sample", sample.AddDate(0, 0, -1), 30, false, -1, ReasonBeforeSample},
		{"zero window same day", sample, 0, true, 0, ReasonAttributed},
		{"zero window next day", sample.AddDate(0, 0, 1), 0, false, 1, ReasonOutsideWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Evaluate(&sample, &storeID, tc.purchase, tc.windowDays)
			if decision.Attributed != tc.attributed {
				t.Fatalf("attributed = %v, want %v", decision.Attributed, tc.attributed)
			}
			if decision.DaysToConversion != tc.days {
				t.Fatalf("days = %d, want %d", decision.DaysToConversion, tc.days)
			}
			if decision.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", decision.Reason, tc.reason)
			}
		})
	}
}

func TestEvaluateMissingInputs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	storeID := uuid.New()

	if d := Evaluate(nil, &storeID, now, 30); d.Attributed || d.Reason != ReasonNoSample {
		t.Fatalf("expected no-sample decision, got %+v", d)
	}
	if d := Evaluate(&now, nil, now, 30); d.Attributed || d.Reason != ReasonNoStore {
		t.Fatalf("expected no-store decision, got %+v", d)
	}
	nilID := uuid.Nil
	if d := Evaluate(&now, &nilID, now, 30); d.Attributed || d.Reason != ReasonNoStore {
		t.Fatalf("expected no-store decision for nil uuid, got %+v", d)
	}
}

func TestCommission(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		total int
		rate  int
		want  int
	}{
		{"ten percent", 10000, 10, 1000},
		{"rounds to nearest cent", 999, 10, 100},
		{"zero rate", 5000, 0, 0},
		{"zero total", 0, 15, 0},
		{"full rate", 2599, 100, 2599},
		{"odd split", 3333, 7, 233},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Commission(tc.total, tc.rate); got != tc.want {
				t.Fatalf("Commission(%d, %d) = %d, want %d", tc.total, tc.rate, got, tc.want)
			}
		})
	}
}

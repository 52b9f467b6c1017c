package backoff_test

import (
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/delivery/backoff"
)

func TestTable_FollowsSchedule(t *testing.T) {
	table := backoff.NewTable(nil)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 30 * time.Second},
		{3, 1 * time.Minute},
		{4, 5 * time.Minute},
		{5, 15 * time.Minute},
	}

	for _, tt := range tests {
		if got := table.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestTable_HoldsAtLastEntry(t *testing.T) {
	table := backoff.NewTable(nil)
	for attempt := 6; attempt <= 20; attempt++ {
		if got := table.Delay(attempt); got != 15*time.Minute {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, 15*time.Minute)
		}
	}
}

func TestTable_ClampsBelowOne(t *testing.T) {
	table := backoff.NewTable(nil)
	if got := table.Delay(0); got != 10*time.Second {
		t.Errorf("Delay(0) = %v, want %v", got, 10*time.Second)
	}
}

func TestTable_DelaysAreNonDecreasing(t *testing.T) {
	table := backoff.NewTable(nil)
	for attempt := 2; attempt <= 10; attempt++ {
		prev, cur := table.Delay(attempt-1), table.Delay(attempt)
		if cur < prev {
			t.Errorf("Delay(%d) = %v < Delay(%d) = %v", attempt, cur, attempt-1, prev)
		}
	}
}

func TestTable_Deterministic(t *testing.T) {
	table := backoff.NewTable(nil)
	for attempt := 1; attempt <= 5; attempt++ {
		if table.Delay(attempt) != table.Delay(attempt) {
			t.Errorf("Delay(%d) not deterministic", attempt)
		}
	}
}

func TestTable_CustomSchedule(t *testing.T) {
	table := backoff.NewTable([]time.Duration{time.Second, 2 * time.Second})
	if got := table.Delay(1); got != time.Second {
		t.Errorf("Delay(1) = %v, want 1s", got)
	}
	if got := table.Delay(5); got != 2*time.Second {
		t.Errorf("Delay(5) = %v, want 2s", got)
	}
}

func TestExhausted(t *testing.T) {
	tests := []struct {
		attempt, max int
		want         bool
	}{
		{1, 5, false},
		{4, 5, false},
		{5, 5, true},
		{6, 5, true},
		{3, 3, true},
	}
	for _, tt := range tests {
		if got := backoff.Exhausted(tt.attempt, tt.max); got != tt.want {
			t.Errorf("Exhausted(%d, %d) = %v, want %v", tt.attempt, tt.max, got, tt.want)
		}
	}
}

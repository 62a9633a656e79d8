// README: Penalty threshold tests (no database).
package complaint

import (
	"testing"
	"time"

	"ridepool/internal/modules/account"
)

func TestEvaluatePenalty(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		count      int
		wantStatus account.DriverStatus
		wantNil    bool
	}{
		{0, "", true},
		{1, "", true},
		{2, "", true},
		{3, account.DriverPaused, false},
		{4, account.DriverPaused, false},
		{6, account.DriverPaused, false},
		{7, account.DriverBanned, false},
		{8, account.DriverBanned, false},
		{100, account.DriverBanned, false},
	}
	for _, tc := range cases {
		got := EvaluatePenalty(tc.count, now)
		if tc.wantNil {
			if got != nil {
				t.Errorf("EvaluatePenalty(%d) = %+v, want nil", tc.count, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("EvaluatePenalty(%d) = nil, want %s", tc.count, tc.wantStatus)
			continue
		}
		if got.Status != tc.wantStatus {
			t.Errorf("EvaluatePenalty(%d).Status = %s, want %s", tc.count, got.Status, tc.wantStatus)
		}
	}
}

func TestEvaluatePenaltyPauseWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := EvaluatePenalty(3, now)
	if p == nil || p.PausedUntil == nil {
		t.Fatal("expected pause with deadline")
	}
	if want := now.Add(72 * time.Hour); !p.PausedUntil.Equal(want) {
		t.Errorf("PausedUntil = %v, want %v", p.PausedUntil, want)
	}
}

func TestEvaluatePenaltyBanHasNoDeadline(t *testing.T) {
	p := EvaluatePenalty(7, time.Now())
	if p == nil {
		t.Fatal("expected ban")
	}
	if p.PausedUntil != nil {
		t.Errorf("ban must not carry a pause deadline, got %v", p.PausedUntil)
	}
}

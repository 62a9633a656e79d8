// README: State machine transition table tests (no database).
package trip

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusAvailable, StatusAccepted, true},
		{StatusAccepted, StatusStarted, true},
		{StatusStarted, StatusCompleted, true},
		// cancel and expiry only leave AVAILABLE
		{StatusAvailable, StatusCancelled, true},
		{StatusAvailable, StatusExpired, true},
		{StatusAccepted, StatusCancelled, false},
		{StatusStarted, StatusCancelled, false},
		{StatusAccepted, StatusExpired, false},
		// invalid: skipping states
		{StatusAvailable, StatusStarted, false},
		{StatusAvailable, StatusCompleted, false},
		{StatusAccepted, StatusCompleted, false},
		// invalid: terminal states have no outgoing transitions
		{StatusCompleted, StatusAvailable, false},
		{StatusCancelled, StatusAccepted, false},
		{StatusExpired, StatusAccepted, false},
		// invalid: backwards
		{StatusStarted, StatusAccepted, false},
		{StatusAccepted, StatusAvailable, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ApplicationApplied, ApplicationScreening, true},
		{ApplicationApplied, ApplicationOffer, true},
		{ApplicationInterview, ApplicationScreening, false},
		{ApplicationOffer, ApplicationHired, true},
		{ApplicationScreening, ApplicationRejected, true},
		{ApplicationApplied, ApplicationWithdrawn, true},
		{ApplicationHired, ApplicationRejected, false},
		{ApplicationRejected, ApplicationScreening, false},
		{ApplicationWithdrawn, ApplicationApplied, false},
		{ApplicationApplied, ApplicationApplied, false},
		{ApplicationApplied, "archived", false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

package service

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusContacted, true},
		{StatusNew, StatusQuoted, true},
		{StatusNew, StatusLost, true},
		{StatusNew, StatusWon, false},
		{StatusContacted, StatusQuoted, true},
		{StatusContacted, StatusWon, true},
		{StatusContacted, StatusNew, false},
		{StatusQuoted, StatusWon, true},
		{StatusQuoted, StatusLost, true},
		{StatusQuoted, StatusContacted, false},
		{StatusWon, StatusLost, false},
		{StatusLost, StatusNew, false},
		{"bogus", StatusNew, false},
	}

	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

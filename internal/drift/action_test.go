package drift

import "testing"

func TestAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sim  float64
		want string
	}{
		{0.9, ActionStay},
		{0.39, ActionStay},
		{0.38, ActionBranchSame}, // boundary is exclusive
		{0.2, ActionBranchSame},
		{0.16, ActionBranchSame},
		{0.15, ActionBranchNewCluster}, // boundary is exclusive
		{0.0, ActionBranchNewCluster},
		{-0.3, ActionBranchNewCluster},
	}

	for _, tc := range tests {
		if got := Action(tc.sim, DefaultStayThreshold, DefaultBranchThreshold); got != tc.want {
			t.Errorf("Action(%v) = %q, want %q", tc.sim, got, tc.want)
		}
	}
}

func TestAction_CustomThresholds(t *testing.T) {
	t.Parallel()

	if got := Action(0.5, 0.7, 0.4); got != ActionBranchSame {
		t.Errorf("Action(0.5, 0.7, 0.4) = %q, want %q", got, ActionBranchSame)
	}
	if got := Action(0.5, 0.45, 0.1); got != ActionStay {
		t.Errorf("Action(0.5, 0.45, 0.1) = %q, want %q", got, ActionStay)
	}
}

// Action must be monotone in sim for fixed thresholds: a higher similarity
// never yields a "more drifted" action.
func TestAction_Monotone(t *testing.T) {
	t.Parallel()

	rank := map[string]int{
		ActionBranchNewCluster: 0,
		ActionBranchSame:       1,
		ActionStay:             2,
	}

	prev := -1
	for sim := -1.0; sim <= 1.0; sim += 0.01 {
		r := rank[Action(sim, DefaultStayThreshold, DefaultBranchThreshold)]
		if r < prev {
			t.Fatalf("action rank decreased at sim=%v", sim)
		}
		prev = r
	}
}

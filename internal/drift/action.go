package drift

// Routing actions returned by the drift endpoint.
const (
	ActionStay             = "STAY"
	ActionBranchSame       = "BRANCH_SAME_CLUSTER"
	ActionBranchNewCluster = "BRANCH_NEW_CLUSTER"
)

// Default thresholds from the gradient benchmark of the paraphrase-MiniLM
// encoder family.
const (
	DefaultStayThreshold   = 0.38
	DefaultBranchThreshold = 0.15
)

// Action maps a similarity onto a routing action. Monotone in sim for
// fixed thresholds: above stay → STAY, above branch → same-cluster branch,
// otherwise new cluster.
func Action(sim, stayThreshold, branchThreshold float64) string {
	switch {
	case sim > stayThreshold:
		return ActionStay
	case sim > branchThreshold:
		return ActionBranchSame
	default:
		return ActionBranchNewCluster
	}
}

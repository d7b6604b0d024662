package edify

// Application-wide defaults shared by config discovery and the CLI surface.
const (
	DefaultAppName    = "edify"
	DefaultConfigPath = "/etc/edify"

	// DefaultHistoryBudget caps how many turns a conversation window may
	// carry into continuity analysis.
	DefaultHistoryBudget = 20
)

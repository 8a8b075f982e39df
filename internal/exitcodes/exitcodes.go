package exitcodes

// Exit codes for pngsweep
// These codes form the contract with scripts that wrap the tool
const (
	Success       = 0   // Sweep completed (individual file failures do not change this)
	InvalidInput  = 1   // Empty input, missing root, or root is not a directory
	InvalidConfig = 2   // Configuration file invalid or missing
	RuntimeError  = 4   // Supporting infrastructure (database, log file) failed to start
	Interrupted   = 130 // Prompt aborted with Ctrl-C
)

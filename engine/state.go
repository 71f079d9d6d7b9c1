package engine

// State is where a Transaction sits in its lifecycle.
type State int

const (
	NotStarted State = iota
	Started
	RolledBack
	Committed
	// FailedToRollback is terminal and only reached when a rollback
	// statement itself fails.
	FailedToRollback
)

var stateNames = [...]string{
	NotStarted:       "NOT_STARTED",
	Started:          "STARTED",
	RolledBack:       "ROLLED_BACK",
	Committed:        "COMMITTED",
	FailedToRollback: "FAILED_TO_ROLLBACK",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further statements can run in this state.
func (s State) Terminal() bool {
	return s == RolledBack || s == Committed || s == FailedToRollback
}

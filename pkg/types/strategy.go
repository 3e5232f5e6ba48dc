package types

// StrategyName identifies an execution strategy.
type StrategyName string

const (
	// StrategySequential runs worker units in-line on the caller.
	StrategySequential StrategyName = "sequential"

	// StrategyProcessPool fans worker units out to a pool of OS processes.
	StrategyProcessPool StrategyName = "process-pool"

	// StrategyThreadPool fans worker units out to a pool of OS threads.
	StrategyThreadPool StrategyName = "thread-pool"
)

// Strategies lists every strategy in the fixed order a run executes them.
var Strategies = []StrategyName{StrategySequential, StrategyProcessPool, StrategyThreadPool}

// Valid reports whether s is a known strategy.
func (s StrategyName) Valid() bool {
	switch s {
	case StrategySequential, StrategyProcessPool, StrategyThreadPool:
		return true
	}
	return false
}

// Rank returns the position of s in Strategies, or -1 if unknown.
func (s StrategyName) Rank() int {
	for i, name := range Strategies {
		if name == s {
			return i
		}
	}
	return -1
}

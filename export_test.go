package crewforge

// Exposed for unit tests.
var (
	Finalize  = finalize
	FindCycle = findCycle
)

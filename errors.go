package crewforge

import "errors"

var (
	// ErrInvalidResult indicates that a phase executor returned output that
	// does not satisfy the schema of its phase. It is absorbed by the flow
	// as a phase failure and replaced by a fallback result.
	ErrInvalidResult = errors.New("invalid phase result")

	// ErrUnknownAgent indicates that a task is assigned to an agent that is
	// not defined in the implementation.
	ErrUnknownAgent = errors.New("task references unknown agent")

	// ErrUnknownDependency indicates that a task depends on a task name that
	// is not defined in the implementation.
	ErrUnknownDependency = errors.New("task references unknown dependency")

	// ErrCyclicDependency indicates that the task dependency graph contains
	// a cycle and cannot be published.
	ErrCyclicDependency = errors.New("task dependency graph contains a cycle")
)

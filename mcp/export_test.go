package mcp

// Exposed for unit tests.
var HandleCreateCrewPlan = (*Server).handleCreateCrewPlan

package models

// Route identifies which execution path handled a turn.
type Route string

const (
	// RouteDirect bypasses the supervisor and invokes the vision tool once.
	RouteDirect Route = "direct"
	// RouteSupervisor runs the general tool-calling loop.
	RouteSupervisor Route = "supervisor"
)

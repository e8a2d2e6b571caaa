package engine

import "context"

// RouteInput describes an incoming HTTP request for route-access evaluation.
type RouteInput struct {
	Path          string
	Method        string
	Authenticated bool
}

// RouteResult holds the result of route-access policy evaluation.
type RouteResult struct {
	Allow bool
}

// Evaluator decides whether a request may reach its route, using OPA or other engines.
type Evaluator interface {
	// EvaluateRoute evaluates the route-access policy for the given request.
	EvaluateRoute(ctx context.Context, input RouteInput) (RouteResult, error)
}

package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Default Rego policy: authentication endpoints and operational endpoints are
// public, everything else requires a valid session token.
const defaultRegoPolicy = `package dastyar.routes

default allow = false

public_prefixes := ["/UserAuth/", "/healthz", "/metrics"]

is_public if {
	some prefix in public_prefixes
	startswith(input.path, prefix)
}

allow if {
	is_public
}

allow if {
	input.authenticated
}
`

// OPAEvaluator evaluates route-access policy using OPA Rego.
// Extra policy modules (same package) may be supplied to extend or restrict access.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the default route policy plus any extra Rego modules.
func NewOPAEvaluator(extraModules ...string) (*OPAEvaluator, error) {
	modules := map[string]string{"policy_0.rego": defaultRegoPolicy}
	for i, m := range extraModules {
		if strings.TrimSpace(m) == "" {
			continue
		}
		modules[fmt.Sprintf("policy_%d.rego", i+1)] = m
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile route policies: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// HealthCheck verifies that the in-process OPA Rego engine can evaluate the compiled policy.
// Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.EvaluateRoute(ctx, RouteInput{Path: "/healthz", Method: "GET"})
	if err != nil {
		return fmt.Errorf("eval route policy: %w", err)
	}
	return nil
}

// EvaluateRoute evaluates the route-access policy for the given request.
// On evaluation failure the request is denied and the error logged; a broken
// policy must never open protected routes.
func (e *OPAEvaluator) EvaluateRoute(ctx context.Context, in RouteInput) (RouteResult, error) {
	input := map[string]interface{}{
		"path":          in.Path,
		"method":        in.Method,
		"authenticated": in.Authenticated,
	}

	q := rego.New(
		rego.Query("data.dastyar.routes.allow"),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		log.Printf("policy: route evaluation failed for %s %s: %v", in.Method, in.Path, err)
		return RouteResult{Allow: false}, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return RouteResult{Allow: false}, fmt.Errorf("route policy query returned no result")
	}
	allow, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return RouteResult{Allow: false}, fmt.Errorf("route policy allow is not a boolean")
	}
	return RouteResult{Allow: allow}, nil
}

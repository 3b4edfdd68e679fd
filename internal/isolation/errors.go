package isolation

import "errors"

// The isolation error taxonomy. Every failure in this layer is terminal for the
// request: the middleware rejects instead of falling back to an unscoped run.
var (
	// ErrMissingProjectID - no project id found in path, header or body.
	ErrMissingProjectID = errors.New("project id is required")

	// ErrInvalidProjectID - a project id was present but is not a valid UUID.
	// Distinct from ErrAccessDenied so callers can answer 400 instead of 403.
	ErrInvalidProjectID = errors.New("invalid project id format")

	// ErrMissingCallerID - no authenticated caller id was supplied to the
	// validator. Malformed input, not a deny.
	ErrMissingCallerID = errors.New("caller id is required")

	// ErrAccessDenied - the caller may not act on the project. The message must
	// not reveal whether the project exists or who its members are.
	ErrAccessDenied = errors.New("project access denied")

	// ErrContextResolution - the membership source allowed access but returned
	// inconsistent or missing data. A data integrity incident, not an
	// authorization failure.
	ErrContextResolution = errors.New("could not establish project context")

	// ErrValidatorUnavailable - the membership source is unreachable or timed
	// out. Never folded into a deny: "denied" and "unavailable" carry different
	// remediation implications.
	ErrValidatorUnavailable = errors.New("project access validation unavailable")

	// ErrQueryScoping - a base query could not be safely confined to one
	// project. Scoping fails closed; an unscoped query is never executed.
	ErrQueryScoping = errors.New("query could not be project scoped")

	// ErrMembershipNotFound is returned by membership sources when the project
	// is unknown. The validator folds it into a deny so unknown and forbidden
	// projects are indistinguishable to the caller.
	ErrMembershipNotFound = errors.New("membership not found")
)

package tour

import "errors"

var (
	// ErrNoRoute means the solver proved that no assignment satisfies the
	// tour constraints. With a valid gateway this indicates a contradictory
	// cluster/gateway specification, not a transient condition.
	ErrNoRoute = errors.New("no route possible")

	// ErrNoIncumbent means the time budget expired before the solver found
	// any feasible tour. Distinct from ErrNoRoute: feasibility was neither
	// proven nor disproven.
	ErrNoIncumbent = errors.New("no tour found within time budget")

	// ErrMalformedTour means a solver-reported success did not decode to a
	// single cycle visiting every location once. This is an internal model
	// or tolerance defect and must abort the request; the assignment is
	// never coerced into a plausible-looking route.
	ErrMalformedTour = errors.New("assignment does not form a single tour")
)

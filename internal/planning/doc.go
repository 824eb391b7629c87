// Package planning provides the default run and cleanup stage planners.
//
// Each stage is an ordered list of rules. A rule inspects the events seen
// so far and is either ready (it yields a step and is consumed), not ready
// yet, or abandoned because the events show it can never become ready. The
// first ready rule wins, so steps come out in a stable order.
package planning

package expr

import (
	"sync/atomic"

	"github.com/symtensor/tensorcas/casconfig"
)

// activeConfig is the Config a host cas.Context last installed via
// SetConfig, consulted by the simplifier and propagator to decide
// whether a rewrite or derivation is worth a trace line. expr's
// factories are free functions with no Context parameter of their own
// (spec.md's sealed-handle construction takes no ambient argument), so
// the debug gate is threaded in the one place that does own a Config:
// cas.NewContext installs it at startup, the same way a process-wide
// logger gets installed once and read from everywhere.
var activeConfig atomic.Pointer[casconfig.Config]

// SetConfig installs the Config whose Debug/Log gate the simplifier's
// and propagator's trace lines. A nil Config disables tracing.
func SetConfig(c *casconfig.Config) { activeConfig.Store(c) }

// debugTrace emits a Debug-level line for subsystem (e.g. "simplify",
// "propagate") when the active Config has tracing enabled for it, in
// the manner itohio-EasyRobot gates its own trace lines off a bool.
// Named debugTrace, not trace, because several assume.Space computations
// in this package already use "trace" as a local variable name for the
// trace-class half of a permutation/trace lattice pair.
func debugTrace(subsystem, format string, args ...interface{}) {
	c := activeConfig.Load()
	if !c.Debug(subsystem) {
		return
	}
	c.Log().Debug().Msgf(format, args...)
}

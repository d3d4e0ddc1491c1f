// Package casconfig holds the ambient, cross-cutting configuration of
// the CAS core: numeric formatting, debug tracing, and logging. It
// plays the role the teacher's config package plays for ivy: a struct
// whose zero value is usable, passed by pointer into every package that
// needs it.
package casconfig

import (
	"os"

	"github.com/rs/zerolog"
)

// Config holds configuration shared across the core: float formatting,
// default tensor dimension for ad hoc construction, debug-trace gates,
// and the logger used by the simplifier and propagator.
type Config struct {
	floatPrec    int // formatting precision setting for Number.Real; number.Number.String does not read it
	defaultDim   int // default tensor dimension setting; no factory reads it
	debug        map[string]bool
	logger       zerolog.Logger
	loggerIsUser bool // true once SetLogger has been called
}

// New returns a Config with the library's defaults: 3-dimensional
// tensors by default (the common continuum-mechanics case), full
// float64 formatting precision, tracing off, logging to stderr at the
// ConsoleWriter's default level, matching itohio-EasyRobot's
// pkg/logger/logger.go setup.
func New() *Config {
	return &Config{
		floatPrec:  -1,
		defaultDim: 3,
		debug:      make(map[string]bool),
		logger:     zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
}

// FloatPrec returns the formatting precision for Number.Real, or -1 for
// strconv's "shortest round-trippable" default.
func (c *Config) FloatPrec() int {
	if c == nil {
		return -1
	}
	return c.floatPrec
}

// SetFloatPrec sets the formatting precision for Number.Real.
func (c *Config) SetFloatPrec(p int) { c.floatPrec = p }

// DefaultDim returns the stored default tensor dimension (3 on a nil
// Config).
func (c *Config) DefaultDim() int {
	if c == nil {
		return 3
	}
	return c.defaultDim
}

// SetDefaultDim sets the default tensor dimension.
func (c *Config) SetDefaultDim(d int) { c.defaultDim = d }

// Debug reports whether tracing is enabled for the named subsystem
// (the core checks "simplify" and "propagate").
func (c *Config) Debug(name string) bool {
	if c == nil {
		return false
	}
	return c.debug[name]
}

// SetDebug enables or disables tracing for the named subsystem.
func (c *Config) SetDebug(name string, on bool) {
	if c.debug == nil {
		c.debug = make(map[string]bool)
	}
	c.debug[name] = on
}

// Log returns the logger to use for structured debug tracing. Safe to
// call on a nil *Config, returning a disabled logger.
func (c *Config) Log() *zerolog.Logger {
	if c == nil {
		l := zerolog.Nop()
		return &l
	}
	return &c.logger
}

// SetLogger overrides the default logger, e.g. to route simplifier
// trace lines into a host application's own zerolog pipeline.
func (c *Config) SetLogger(l zerolog.Logger) {
	c.logger = l
	c.loggerIsUser = true
}

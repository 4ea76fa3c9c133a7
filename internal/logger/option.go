package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelGate pins a wrapped core to its own minimum level, ignoring whatever
// level the core was originally built with.
type levelGate struct {
	zapcore.Core

	// level is the minimum level the gate lets through.
	level zapcore.Level
}

// Enabled reports whether entries of the given level pass the gate.
func (g *levelGate) Enabled(l zapcore.Level) bool {
	return g.level.Enabled(l)
}

// Check consults the gate's own level instead of the wrapped core's.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (g *levelGate) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if g.Enabled(ent.Level) {
		return ce.AddCore(ent, g)
	}

	return ce
}

// With keeps the gate wrapped around the enriched core.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (g *levelGate) With(fields []zapcore.Field) zapcore.Core {
	return &levelGate{
		g.Core.With(fields),
		g.level,
	}
}

// WithLevel returns an option that rebuilds an existing logger at the given
// level, regardless of the level its core enforces.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(
		func(core zapcore.Core) zapcore.Core {
			return &levelGate{core, lvl}
		})
}

// Package logger wraps zap behind the helpers the rest of the suite uses:
//   - a process-wide sugared logger with a console encoder,
//   - context plumbing (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and a per-context minimum-level override,
//   - the leveled families (Infof, WarnKV, and so on).
//
// Log lines go to stderr. Stdout belongs to the colored status output, so
// scripts can keep progress reporting apart from diagnostics. The initial
// level is taken from the WATERMARK_LOG_LEVEL environment variable when set.
package logger

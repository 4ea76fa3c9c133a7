// Package builder implements the packaging pipeline from dependency
// installation through the PyInstaller invocation. Step failures are
// recorded in the build report but never abort the run; the final probe
// for the packaged artifact alone decides whether the build succeeded.
package builder

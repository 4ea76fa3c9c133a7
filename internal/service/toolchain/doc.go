// Package toolchain locates a Python interpreter and drives pip and
// PyInstaller through it for the build pipeline.
package toolchain

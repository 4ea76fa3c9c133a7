// Package doctor diagnoses the build environment. It probes the Python
// interpreter, pip and PyInstaller, the files the packaging pipeline
// consumes, the artifact folder, the Docker daemon and the last recorded
// build, and reports one verdict per probe.
package doctor

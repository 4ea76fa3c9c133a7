// Package docker backs the containerized packaging mode. The Docker Engine
// SDK handles daemon detection and image queries; long operations whose
// terminal output matters to the operator (pull, run) go through the
// docker CLI instead.
package docker

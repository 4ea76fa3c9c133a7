package toolchain

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// interpreterCandidates are tried in order when no override is given.
var interpreterCandidates = []string{"python", "python3", "py"}

// errInterpreterNotFound is returned when no Python interpreter could be
// located on PATH and no override was given.
var errInterpreterNotFound = errors.New("no python interpreter found, install Python or pass an interpreter explicitly")

// ResolveInterpreter picks the Python interpreter the pipeline will drive.
// An override always wins: explicit paths must exist on disk, bare command
// names must resolve on PATH. Without an override the usual interpreter
// names are tried in order.
func ResolveInterpreter(override string) (string, error) {
	if override != "" {
		return resolveOverride(override)
	}

	for _, candidate := range interpreterCandidates {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errInterpreterNotFound
}

func resolveOverride(override string) (string, error) {
	// A path separator means the operator pointed at a concrete file.
	if strings.ContainsRune(override, '/') || strings.ContainsRune(override, os.PathSeparator) {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("interpreter %s: %w", override, err)
		}

		return override, nil
	}

	if _, err := exec.LookPath(override); err != nil {
		return "", fmt.Errorf("interpreter %s: %w", override, err)
	}

	return override, nil
}

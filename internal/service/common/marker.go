//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/watermark-tool/internal/logger"
)

// Marker guards a tool against concurrent runs through a file in the working
// directory. A marker older than Lifetime is treated as a leftover from a
// crashed run and reclaimed.
type Marker struct {
	// Filename is the marker file name, usually relative to the working directory.
	Filename string
	// Lifetime is how old a marker may get before it counts as stale.
	Lifetime time.Duration
	// ProcessName is the executable a stale marker is attributed to.
	ProcessName string
}

// IsHeld reports whether another run holds the marker right now.
// Stale markers are reclaimed: the owning process is terminated and the
// marker file removed.
func (m *Marker) IsHeld(ctx context.Context) bool {
	logger.InfoKV(ctx, "Checking for the presence of a marker", "path", m.Filename)

	fileInfo, err := os.Stat(m.Filename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= m.Lifetime {
			return true
		}

		logger.Info(ctx, "The marker is too old, attempting cleanup")

		if err = TerminateProcessByName(m.ProcessName); err != nil {
			return true
		}

		if err = os.Remove(m.Filename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Marker not found, continuing")

		return false
	}

	logger.Infof(ctx, "Unable to read marker: %v", err)

	return false
}

// Acquire drops the marker file with the current modification time.
func (m *Marker) Acquire() error {
	marker, err := os.Create(m.Filename)
	if err != nil {
		return err
	}

	return marker.Close()
}

// Release removes the marker file. A missing marker is not an error.
func (m *Marker) Release() error {
	if err := os.Remove(m.Filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// TerminateProcessByName kills every process with the provided executable
// name, skipping the current one.
func TerminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

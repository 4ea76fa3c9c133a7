package toolchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseInterpreterVersion checks version extraction from interpreter banners.
func TestParseInterpreterVersion(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Python 3.11.4\n": "3.11.4",
		"Python 2.7.18":   "2.7.18",
		"3.12.0":          "3.12.0",
		"":                "",
	}
	for output, want := range cases {
		require.Equal(t, want, parseInterpreterVersion(output))
	}
}

// TestPythonToolchain_MissingInterpreter ensures probes against a nonexistent
// interpreter fail instead of hanging.
func TestPythonToolchain_MissingInterpreter(t *testing.T) {
	t.Parallel()

	tc := NewPythonToolchain("definitely-not-a-python-interpreter")

	_, err := tc.PackagerVersion(context.Background())
	require.Error(t, err)

	_, err = tc.InterpreterVersion(context.Background())
	require.Error(t, err)
}

package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestShortIsPartOfFull ensures the bare version appears in the full string.
func TestShortIsPartOfFull(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
}

// TestFullLayoutStaysParseable guards the layout the update workflow parses
// when it probes installed tools for their version.
func TestFullLayoutStaysParseable(t *testing.T) {
	t.Parallel()

	full := Full()
	require.True(t, strings.HasPrefix(full, "version: "))

	parts := strings.Split(full, ", ")
	require.Len(t, parts, 3)
	require.True(t, strings.HasPrefix(parts[1], "commit: "))
	require.True(t, strings.HasPrefix(parts[2], "built at: "))
}

// TestUserAgent ensures the HTTP identity carries the release version.
func TestUserAgent(t *testing.T) {
	t.Parallel()

	require.Contains(t, UserAgent(), Short())
}

package logger_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalyx/embedder/internal/setup/telemetry/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRotatorKeepsNewestLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.log")

	rotator, err := logger.NewLogRotator(path, 5)
	require.NoError(t, err)

	for i := range 10 {
		_, err := fmt.Fprintf(rotator, "line %d\n", i)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, []string{"line 5", "line 6", "line 7", "line 8", "line 9"}, lines)

	// Writes keep going to the rotated file
	_, err = fmt.Fprintln(rotator, "line 10")
	require.NoError(t, err)
	require.NoError(t, rotator.Sync())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "line 10\n"))
}

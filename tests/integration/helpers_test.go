package integration

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// execInContainer runs a command in the container and returns stdout
func execInContainer(ctx context.Context, container testcontainers.Container, cmd []string) (int, string, error) {
	exitCode, reader, err := container.Exec(ctx, cmd)
	if err != nil {
		return exitCode, "", err
	}

	// Demux the Docker stream (stdout/stderr are multiplexed)
	var stdout, stderr bytes.Buffer
	_, _ = stdcopy.StdCopy(&stdout, &stderr, reader)

	return exitCode, stdout.String(), nil
}

// assertFileExists checks that a file exists in the container
func assertFileExists(t *testing.T, ctx context.Context, container testcontainers.Container, path string) {
	t.Helper()
	exitCode, _, err := execInContainer(ctx, container, []string{"test", "-e", path})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode, "file %s should exist", path)
}

// assertFileContains checks that a file contains all expected substrings
func assertFileContains(t *testing.T, ctx context.Context, container testcontainers.Container, path string, expected []string) {
	t.Helper()
	exitCode, content, err := execInContainer(ctx, container, []string{"cat", path})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to read file %s", path)

	for _, substr := range expected {
		assert.Contains(t, content, substr, "file %s should contain %q", path, substr)
	}
}

// assertFileMode checks that a file has the expected permission mode
func assertFileMode(t *testing.T, ctx context.Context, container testcontainers.Container, path string, expectedMode string) {
	t.Helper()
	exitCode, mode, err := execInContainer(ctx, container, []string{"stat", "-c", "%a", path})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to stat file %s", path)

	assert.Equal(t, expectedMode, strings.TrimSpace(mode), "file %s should have mode %s", path, expectedMode)
}

// assertNoStagedScripts checks that no temporary script files were left behind
func assertNoStagedScripts(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()
	exitCode, out, err := execInContainer(ctx, container,
		[]string{"sh", "-c", "ls /tmp/sshops_* 2>/dev/null | wc -l"})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode)

	assert.Equal(t, "0", strings.TrimSpace(out), "staged script files should not persist")
}

// containerHostKey reads an sshd host key in authorized_keys format
func containerHostKey(t *testing.T, ctx context.Context, container testcontainers.Container, algo string) string {
	t.Helper()
	exitCode, out, err := execInContainer(ctx, container,
		[]string{"cat", fmt.Sprintf("/etc/ssh/ssh_host_%s_key.pub", algo)})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to read container host key")

	return strings.TrimSpace(out)
}

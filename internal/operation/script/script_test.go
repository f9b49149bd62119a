package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/connector/mock"
	"github.com/opsforge/sshops/internal/operation"
)

func TestRunStagesExecutesAndCleansUp(t *testing.T) {
	body := "#!/bin/sh\necho 'it''s alive' $HOME\nexit 0\n"

	conn := &mock.Connector{
		ExecuteFunc: func(cmd string) (*connector.Result, error) {
			return &connector.Result{Stdout: "sentinel\n"}, nil
		},
	}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, map[string]any{"script": body})
	require.NoError(t, err)

	// The body was staged verbatim and marked executable.
	path, ok := result.Data["path"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(path, "/tmp/sshops_"))
	assert.Equal(t, uint32(0o700), conn.Modes[path])

	// Executed as "sh <path>".
	require.Len(t, conn.Commands, 1)
	assert.Equal(t, "sh "+operation.ShellQuote(path), conn.Commands[0])

	// The temp file was removed afterwards.
	assert.Equal(t, []string{path}, conn.Removed)
	assert.NotContains(t, conn.Files, path)

	assert.Equal(t, "sentinel\n", result.Data["stdout"])
	assert.NotContains(t, result.Data, "cleanup_error")
}

func TestRunInterpreterAndChdir(t *testing.T) {
	conn := &mock.Connector{}

	op := &Operation{}
	_, err := op.Run(context.Background(), conn, map[string]any{
		"script":      "print('hi')",
		"interpreter": "python3",
		"chdir":       "/opt/app",
	})
	require.NoError(t, err)

	require.Len(t, conn.Commands, 1)
	cmd := conn.Commands[0]
	assert.True(t, strings.HasPrefix(cmd, "cd '/opt/app' && python3 "), cmd)
}

func TestRunNonZeroExitIsSuccess(t *testing.T) {
	conn := &mock.Connector{
		ExecuteFunc: func(cmd string) (*connector.Result, error) {
			return &connector.Result{ExitCode: 3}, nil
		},
	}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, map[string]any{"script": "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Data["exit_code"])

	// Cleanup still ran.
	assert.Len(t, conn.Removed, 1)
}

func TestRunCleanupFailureIsSwallowed(t *testing.T) {
	conn := &mock.Connector{RemoveErr: errors.New("permission denied")}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, map[string]any{"script": "true"})
	require.NoError(t, err, "cleanup failure must not fail the operation")

	assert.Contains(t, result.Data, "cleanup_error")
}

func TestRunCleanupAfterExecFailure(t *testing.T) {
	conn := &mock.Connector{ExecuteErr: errors.New("connection lost")}

	op := &Operation{}
	_, err := op.Run(context.Background(), conn, map[string]any{"script": "true"})
	require.Error(t, err)

	// The staged file is still removed on the failure path.
	assert.Len(t, conn.Removed, 1)
}

func TestRunStagingFailure(t *testing.T) {
	conn := &mock.Connector{UploadErr: errors.New("disk full")}

	op := &Operation{}
	_, err := op.Run(context.Background(), conn, map[string]any{"script": "true"})
	require.Error(t, err)

	var transferErr *operation.TransferError
	assert.True(t, errors.As(err, &transferErr))

	// Nothing was executed.
	assert.Empty(t, conn.Commands)
}

func TestTempPathUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		p := tempPath()
		assert.False(t, seen[p], "temp path collision: %s", p)
		seen[p] = true
	}
}

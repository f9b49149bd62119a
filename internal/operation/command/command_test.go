package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/connector/mock"
)

func TestRun(t *testing.T) {
	conn := &mock.Connector{
		Responses: map[string]*connector.Result{
			"uptime": {Stdout: "up 5 days\n", ExitCode: 0, Duration: 12 * time.Millisecond},
		},
	}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, map[string]any{"cmd": "uptime"})
	require.NoError(t, err)

	assert.Equal(t, "uptime", result.Data["cmd"])
	assert.Equal(t, "up 5 days\n", result.Data["stdout"])
	assert.Equal(t, 0, result.Data["exit_code"])
	assert.Equal(t, int64(12), result.Data["duration_ms"])
}

func TestRunNonZeroExitIsSuccess(t *testing.T) {
	conn := &mock.Connector{
		Responses: map[string]*connector.Result{
			"exit 7": {ExitCode: 7, Stderr: "boom\n"},
		},
	}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, map[string]any{"cmd": "exit 7"})
	require.NoError(t, err, "non-zero exit code must not be an operation failure")

	assert.Equal(t, 7, result.Data["exit_code"])
	assert.Equal(t, "boom\n", result.Data["stderr"])
}

func TestRunChdir(t *testing.T) {
	conn := &mock.Connector{}

	op := &Operation{}
	_, err := op.Run(context.Background(), conn, map[string]any{
		"cmd":   "ls",
		"chdir": "/var/log",
	})
	require.NoError(t, err)

	require.Len(t, conn.Commands, 1)
	assert.Equal(t, "cd '/var/log' && ls", conn.Commands[0])
}

func TestRunMissingCmd(t *testing.T) {
	op := &Operation{}
	_, err := op.Run(context.Background(), &mock.Connector{}, map[string]any{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "cmd"))
}

func TestRunDispatchFailure(t *testing.T) {
	conn := &mock.Connector{ExecuteErr: errors.New("connection lost")}

	op := &Operation{}
	_, err := op.Run(context.Background(), conn, map[string]any{"cmd": "uptime"})
	assert.Error(t, err)
}

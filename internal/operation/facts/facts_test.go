package facts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/connector/mock"
)

func TestRun(t *testing.T) {
	conn := &mock.Connector{
		Responses: map[string]*connector.Result{
			"hostname": {Stdout: "web1\n"},
			"uname -s": {Stdout: "Linux\n"},
		},
	}

	op := &Operation{}
	result, err := op.Run(context.Background(), conn, nil)
	require.NoError(t, err)

	assert.Equal(t, "web1", result.Data["hostname"])
	assert.Equal(t, "linux", result.Data["os_type"])
	// Failed probes degrade to zero values instead of failing the call.
	assert.Equal(t, int64(0), result.Data["uptime_seconds"])
}

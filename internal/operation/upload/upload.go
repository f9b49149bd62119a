// Package upload provides the operation for writing a file to the target.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strconv"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/operation"
)

func init() {
	operation.Register(&Operation{})
}

// Operation writes one file to the target host over the SFTP sub-channel.
type Operation struct{}

// Name returns the operation identifier.
func (o *Operation) Name() string {
	return "upload"
}

// Run executes the upload operation.
//
// Parameters:
//   - dest (string, required): Destination path on the target
//   - content (string, required): File content, encoded per 'encoding'
//   - encoding (string): "text" (UTF-8 as-is, default) or "base64"
//   - mode (string): File permissions in octal (e.g., "0644")
//   - create_dirs (bool): Create parent directories first (default: false)
//
// The returned size is the exact number of bytes written.
func (o *Operation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*operation.Result, error) {
	dest, err := operation.RequireString(params, "dest")
	if err != nil {
		return nil, err
	}

	content, ok := params["content"].(string)
	if !ok {
		return nil, fmt.Errorf("required parameter 'content' is missing")
	}

	encoding := operation.GetString(params, "encoding", "text")
	mode := operation.GetString(params, "mode", "")
	createDirs := operation.GetBool(params, "create_dirs", false)

	data, err := decode(content, encoding)
	if err != nil {
		return nil, err
	}

	var perm uint32
	if mode != "" {
		parsed, err := strconv.ParseUint(mode, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid mode %q: %w", mode, err)
		}
		perm = uint32(parsed)
	}

	if createDirs {
		dir := path.Dir(dest)
		if dir != "." && dir != "/" {
			result, err := conn.Execute(ctx, fmt.Sprintf("mkdir -p %s", operation.ShellQuote(dir)))
			if err != nil {
				return nil, fmt.Errorf("failed to create parent directories: %w", err)
			}
			if result.ExitCode != 0 {
				return nil, &operation.TransferError{
					Path: dest,
					Err:  fmt.Errorf("mkdir -p %s exited %d: %s", dir, result.ExitCode, result.Stderr),
				}
			}
		}
	}

	if err := conn.Upload(ctx, bytes.NewReader(data), dest, perm); err != nil {
		return nil, &operation.TransferError{Path: dest, Err: err}
	}

	return operation.OKWithData("file uploaded", map[string]any{
		"path": dest,
		"size": len(data),
	}), nil
}

// decode converts the wire content to raw bytes per the encoding.
func decode(content, encoding string) ([]byte, error) {
	switch encoding {
	case "text":
		return []byte(content), nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 content: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q (want \"text\" or \"base64\")", encoding)
	}
}

// Ensure Operation implements the operation.Operation interface.
var _ operation.Operation = (*Operation)(nil)

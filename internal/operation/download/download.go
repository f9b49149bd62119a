// Package download provides the operation for reading a file from the target.
package download

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/opsforge/sshops/internal/connector"
	"github.com/opsforge/sshops/internal/operation"
)

func init() {
	operation.Register(&Operation{})
}

// Operation reads one file from the target host over the SFTP sub-channel.
type Operation struct{}

// Name returns the operation identifier.
func (o *Operation) Name() string {
	return "download"
}

// Run executes the download operation.
//
// Parameters:
//   - src (string, required): Source path on the target
//   - encoding (string): "base64" (default) or "text"
//   - max_size (int): Refuse files larger than this many bytes (0 = no limit)
//
// The result carries the content re-encoded per 'encoding', plus the
// remote file's size, octal mode as reported by the host, and its
// modification time normalized to UTC.
func (o *Operation) Run(ctx context.Context, conn connector.Connector, params map[string]any) (*operation.Result, error) {
	src, err := operation.RequireString(params, "src")
	if err != nil {
		return nil, err
	}

	encoding := operation.GetString(params, "encoding", "base64")
	maxSize := operation.GetInt(params, "max_size", 0)

	if encoding != "text" && encoding != "base64" {
		return nil, fmt.Errorf("unsupported encoding %q (want \"text\" or \"base64\")", encoding)
	}

	info, err := conn.Stat(ctx, src)
	if err != nil {
		return nil, &operation.TransferError{Path: src, Err: err}
	}

	if maxSize > 0 && info.Size > int64(maxSize) {
		return nil, &operation.TransferError{
			Path: src,
			Err:  fmt.Errorf("file is %d bytes, larger than the %d byte limit", info.Size, maxSize),
		}
	}

	var buf bytes.Buffer
	if err := conn.Download(ctx, src, &buf); err != nil {
		return nil, &operation.TransferError{Path: src, Err: err}
	}

	var content string
	switch encoding {
	case "text":
		if !utf8.Valid(buf.Bytes()) {
			return nil, fmt.Errorf("file %s is not valid UTF-8, use base64 encoding", src)
		}
		content = buf.String()
	case "base64":
		content = base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	return operation.OKWithData("file downloaded", map[string]any{
		"content": content,
		"path":    src,
		"size":    buf.Len(),
		"mode":    info.Mode,
		"mtime":   info.ModTime.UTC().Format(time.RFC3339),
	}), nil
}

// Ensure Operation implements the operation.Operation interface.
var _ operation.Operation = (*Operation)(nil)

package operation

import "fmt"

// TransferError reports a failure to move file content to or from the
// remote host. Temporary artifact cleanup has already been attempted by
// the time this is returned.
type TransferError struct {
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed for %s: %v", e.Path, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

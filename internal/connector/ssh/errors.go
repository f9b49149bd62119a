package ssh

import "fmt"

// ConnectionError reports a failure to establish or use the transport:
// DNS or TCP failure, authentication rejection, or a host key mismatch.
// The operation never sees a session when this is returned.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HostKeyMismatchError means the host presented a key that does not match
// the configured known-hosts entry.
type HostKeyMismatchError struct {
	Host      string
	WantType  string
	GotType   string
	GotSHA256 string
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: expected %s key, host presented %s key %s",
		e.Host, e.WantType, e.GotType, e.GotSHA256)
}

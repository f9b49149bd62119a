package ssh

import (
	"bytes"
	"net"

	gossh "golang.org/x/crypto/ssh"
)

// hostKeyCallback returns the verification policy for a connection.
// With an expected key the presented key must match exactly; without one
// verification is skipped entirely. There is no middle ground: a
// configured key that does not match aborts the handshake, it is never
// downgraded to skip.
// hostKeyAlgorithms lists the negotiation algorithms the expected key
// can satisfy. An RSA key signs under several algorithm names and modern
// servers no longer offer the legacy ssh-rsa one, so a stored RSA key
// must admit all of them.
func hostKeyAlgorithms(expected gossh.PublicKey) []string {
	switch expected.Type() {
	case gossh.KeyAlgoRSA:
		return []string{gossh.KeyAlgoRSASHA512, gossh.KeyAlgoRSASHA256, gossh.KeyAlgoRSA}
	default:
		return []string{expected.Type()}
	}
}

func hostKeyCallback(host string, expected gossh.PublicKey) gossh.HostKeyCallback {
	if expected == nil {
		return gossh.InsecureIgnoreHostKey()
	}

	want := expected.Marshal()

	return func(hostname string, remote net.Addr, key gossh.PublicKey) error {
		if !bytes.Equal(key.Marshal(), want) {
			return &HostKeyMismatchError{
				Host:      host,
				WantType:  expected.Type(),
				GotType:   key.Type(),
				GotSHA256: gossh.FingerprintSHA256(key),
			}
		}
		return nil
	}
}

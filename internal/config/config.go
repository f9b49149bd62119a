// Package config holds application-level connection defaults and the
// per-operation target merge.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Configuration faults. These are detected before any network I/O and are
// never retried.
var (
	// ErrNoPrivateKey means no private key was supplied at the
	// application level. This is a configuration fault, not a
	// per-operation fault.
	ErrNoPrivateKey = errors.New("no private key configured")

	// ErrNoUser means neither the application default nor the
	// per-operation override supplied a username.
	ErrNoUser = errors.New("no username configured")

	// ErrNoHost means the operation did not name a target host.
	ErrNoHost = errors.New("no target host given")
)

// DefaultPort is used when the target does not specify a port.
const DefaultPort = 22

// Config is the application-level configuration shared across operations.
type Config struct {
	// User is the default username, overridable per operation.
	User string `yaml:"user"`

	// PrivateKey is the PEM-encoded private key content.
	PrivateKey string `yaml:"private_key"`

	// PrivateKeyPath points at a key file, read lazily at resolve time.
	// PrivateKey takes precedence when both are set.
	PrivateKeyPath string `yaml:"private_key_path"`

	// KnownHosts maps hostname to the expected public key in
	// authorized_keys format. Hosts without an entry are not verified.
	KnownHosts map[string]string `yaml:"known_hosts"`

	// Timeout bounds each operation, in seconds. Zero means no limit.
	Timeout int `yaml:"timeout"`
}

// Target identifies the host for a single operation.
type Target struct {
	Host string
	Port int

	// User overrides the application-level default when non-empty.
	User string
}

// Params is a fully-resolved set of connection parameters, ready for the
// SSH connector. No field requires further defaulting or I/O.
type Params struct {
	Host   string
	Port   int
	User   string
	Signer ssh.Signer

	// HostKey is the expected public key for Host, nil when host key
	// verification is skipped.
	HostKey ssh.PublicKey

	// Timeout bounds the whole operation. Zero means no limit.
	Timeout time.Duration
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Resolve merges the per-operation target with the application defaults
// and returns fully-resolved connection parameters. The per-operation
// value wins wherever both scopes supply one. Validation happens here,
// before any connection attempt.
func (c *Config) Resolve(t Target) (*Params, error) {
	if t.Host == "" {
		return nil, ErrNoHost
	}

	user := t.User
	if user == "" {
		user = c.User
	}
	if user == "" {
		return nil, ErrNoUser
	}

	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d for host %s", port, t.Host)
	}

	key := []byte(c.PrivateKey)
	if len(key) == 0 && c.PrivateKeyPath != "" {
		data, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key %s: %w", c.PrivateKeyPath, err)
		}
		key = data
	}
	if len(key) == 0 {
		return nil, ErrNoPrivateKey
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	params := &Params{
		Host:    t.Host,
		Port:    port,
		User:    user,
		Signer:  signer,
		Timeout: time.Duration(c.Timeout) * time.Second,
	}

	// No known_hosts entry means verification is skipped for this host.
	// The trade-off favors dynamic environments over strict checking.
	if raw, ok := c.KnownHosts[t.Host]; ok {
		pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid known_hosts entry for %s: %w", t.Host, err)
		}
		params.HostKey = pub
	}

	return params, nil
}

package sftp

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"fulfillment/internal/pkg/errs"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	tempSuffix             = ".part"
	breakerName            = "sftp"
)

// Config describes the partner's SFTP endpoint. Exactly one host key policy must be set:
// a known_hosts file, or InsecureIgnoreHostKey for test servers.
type Config struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	PrivateKeyPath        string
	KnownHostsPath        string
	InsecureIgnoreHostKey bool
	DialTimeout           time.Duration

	// BreakerFailures consecutive failed attempts open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = defaultBreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
	return c
}

// ClientConfig builds the SSH client configuration. Problems are *errs.ConfigurationError.
func (c Config) ClientConfig() (*ssh.ClientConfig, error) {
	c = c.withDefaults()
	if c.Host == "" {
		return nil, errs.NewConfigurationError("SFTP_HOST", "must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return nil, errs.NewConfigurationError("SFTP_PORT", fmt.Sprintf("%d is not a valid port", c.Port))
	}
	if c.User == "" {
		return nil, errs.NewConfigurationError("SFTP_USER", "must not be empty")
	}

	var auth []ssh.AuthMethod
	if c.PrivateKeyPath != "" {
		pem, err := os.ReadFile(c.PrivateKeyPath)
		if err != nil {
			return nil, errs.NewConfigurationError("SFTP_PRIVATE_KEY_PATH", err.Error())
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errs.NewConfigurationError("SFTP_PRIVATE_KEY_PATH", err.Error())
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if len(auth) == 0 {
		return nil, errs.NewConfigurationError("SFTP_PASSWORD", "either a password or a private key is required")
	}

	hostKey, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.DialTimeout,
	}, nil
}

func (c Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	switch {
	case c.KnownHostsPath != "" && c.InsecureIgnoreHostKey:
		return nil, errs.NewConfigurationError("SFTP_INSECURE_IGNORE_HOST_KEY", "cannot be combined with SFTP_KNOWN_HOSTS_PATH")
	case c.KnownHostsPath != "":
		cb, err := knownhosts.New(c.KnownHostsPath)
		if err != nil {
			return nil, errs.NewConfigurationError("SFTP_KNOWN_HOSTS_PATH", err.Error())
		}
		return cb, nil
	case c.InsecureIgnoreHostKey:
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	default:
		return nil, errs.NewConfigurationError("SFTP_KNOWN_HOSTS_PATH", "required unless SFTP_INSECURE_IGNORE_HOST_KEY is set")
	}
}

package sftp

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"

	sftpclient "github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// session is the part of an SFTP client a delivery needs. Close must be safe to call
// more than once and from another goroutine.
type session interface {
	Create(path string) (io.WriteCloser, error)
	PosixRename(oldname, newname string) error
	Remove(path string) error
	Close() error
}

// dialer opens one session per delivery attempt. Failures are *errs.TransportError with
// an empty filename.
type dialer func(ctx context.Context) (session, error)

type clientSession struct {
	sftp *sftpclient.Client
	ssh  *ssh.Client
}

func (s *clientSession) Create(path string) (io.WriteCloser, error) {
	return s.sftp.Create(path)
}

func (s *clientSession) PosixRename(oldname, newname string) error {
	return s.sftp.PosixRename(oldname, newname)
}

func (s *clientSession) Remove(path string) error {
	return s.sftp.Remove(path)
}

func (s *clientSession) Close() error {
	return errors.Join(s.sftp.Close(), s.ssh.Close())
}

func sshDialer(cfg Config, clientCfg *ssh.ClientConfig) dialer {
	return func(ctx context.Context) (session, error) {
		d := net.Dialer{Timeout: cfg.DialTimeout}
		conn, err := d.DialContext(ctx, "tcp", cfg.addr())
		if err != nil {
			return nil, errs.NewTransportError(errs.StageConnect, "", err)
		}

		// The handshake ignores ctx, so bound it with the connection deadline.
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}
		sshConn, chans, reqs, err := ssh.NewClientConn(conn, cfg.addr(), clientCfg)
		if err != nil {
			_ = conn.Close()
			return nil, errs.NewTransportError(handshakeStage(err), "", err)
		}
		_ = conn.SetDeadline(time.Time{})

		client := ssh.NewClient(sshConn, chans, reqs)
		sc, err := sftpclient.NewClient(client)
		if err != nil {
			_ = client.Close()
			return nil, errs.NewTransportError(errs.StageConnect, "", err)
		}
		return &clientSession{sftp: sc, ssh: client}, nil
	}
}

func handshakeStage(err error) errs.TransportStage {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) || strings.Contains(err.Error(), "unable to authenticate") {
		return errs.StageAuth
	}
	return errs.StageConnect
}

// Package sftp delivers dispatch documents to the trading partner's exchange directory.
//
// Every attempt opens its own SSH session, writes the content under filename+".part" and
// renames it into place with posix-rename, so the partner never sees a partial file under
// the final name. A circuit breaker stops dialing a partner that keeps failing.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("sftp circuit breaker is open")

type Transfer struct {
	dial    dialer
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewTransfer(cfg Config, logger *slog.Logger, m *metrics.Metrics) (*Transfer, error) {
	cfg = cfg.withDefaults()
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return newTransfer(sshDialer(cfg, clientCfg), cfg, logger, m), nil
}

func newTransfer(dial dialer, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Transfer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	m.SetCircuitBreakerState(breakerName, float64(gobreaker.StateClosed))

	return &Transfer{
		dial:    dial,
		breaker: newBreaker(cfg, logger, m),
		logger:  logger,
	}
}

func newBreaker(cfg Config, logger *slog.Logger, m *metrics.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A caller giving up says nothing about the partner.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			m.SetCircuitBreakerState(name, float64(to))
		},
	})
}

// Deliver writes content to directory/filename. Every failure is an *errs.TransportError;
// an open breaker fails at the connect stage without dialing.
func (t *Transfer) Deliver(ctx context.Context, directory, filename string, content []byte) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return errs.NewValidationError("filename", fmt.Sprintf("%q is not a plain file name", filename))
	}
	if err := ctx.Err(); err != nil {
		return errs.NewTransportError(errs.StageConnect, filename, err)
	}

	_, err := t.breaker.Execute(func() (any, error) {
		return nil, t.deliver(ctx, directory, filename, content)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		t.logger.Warn("sftp delivery rejected", "filename", filename, "error", err)
		return errs.NewTransportError(errs.StageConnect, filename, fmt.Errorf("%w: %w", ErrCircuitOpen, err))
	}
	return err
}

func (t *Transfer) deliver(ctx context.Context, directory, filename string, content []byte) (err error) {
	sess, err := t.dial(ctx)
	if err != nil {
		var te *errs.TransportError
		if errors.As(err, &te) {
			return errs.NewTransportError(te.Stage, filename, withContext(ctx, te.Cause))
		}
		return errs.NewTransportError(errs.StageConnect, filename, withContext(ctx, err))
	}

	// Cancellation closes the session, which unblocks any write or rename in flight.
	stop := context.AfterFunc(ctx, func() { _ = sess.Close() })
	defer func() {
		if stop() {
			_ = sess.Close()
		}
	}()

	final := path.Join(directory, filename)
	temp := final + tempSuffix

	f, err := sess.Create(temp)
	if err != nil {
		return errs.NewTransportError(errs.StageWrite, filename, withContext(ctx, err))
	}
	if _, err = f.Write(content); err != nil {
		_ = f.Close()
		t.discard(sess, temp)
		return errs.NewTransportError(errs.StageWrite, filename, withContext(ctx, err))
	}
	if err = f.Close(); err != nil {
		t.discard(sess, temp)
		return errs.NewTransportError(errs.StageWrite, filename, withContext(ctx, err))
	}
	if err = sess.PosixRename(temp, final); err != nil {
		t.discard(sess, temp)
		return errs.NewTransportError(errs.StageRename, filename, withContext(ctx, err))
	}

	t.logger.Debug("sftp delivery complete", "path", final, "bytes", len(content))
	return nil
}

func (t *Transfer) discard(sess session, temp string) {
	if err := sess.Remove(temp); err != nil {
		t.logger.Debug("temporary file left behind", "path", temp, "error", err)
	}
}

func withContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return errors.Join(err, ctxErr)
	}
	return err
}

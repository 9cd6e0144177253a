package ports

import "context"

// Transfer delivers a file to the trading partner's exchange directory. The file is never
// visible under filename before it is complete. Failures are *errs.TransportError.
type Transfer interface {
	Deliver(ctx context.Context, directory, filename string, content []byte) error
}

package ports

import "context"

// SerialCounter is a durable counter per scope. Next increments and returns the new value
// in one atomic statement; values are never handed out twice, gaps are allowed.
type SerialCounter interface {
	Next(ctx context.Context, scope string) (int64, error)
}

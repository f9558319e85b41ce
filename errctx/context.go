package errctx

import "context"

// ctxKey is an unexported type so values stored by this package can
// never collide with keys set by other packages sharing a context.Context.
type ctxKey struct{}

// WithLastError derives a new Context carrying rec as its last error,
// the per-task analogue of the original thread-local "last error"
// slot: each logical unit of work gets its own record instead of
// sharing one across an entire goroutine's lifetime.
func WithLastError(ctx context.Context, rec Record) context.Context {
	return context.WithValue(ctx, ctxKey{}, &rec)
}

// LastError returns the most recent Record logged against ctx (or
// any ancestor it was derived from), if any.
func LastError(ctx context.Context) (Record, bool) {
	v, ok := ctx.Value(ctxKey{}).(*Record)
	if !ok || v == nil {
		return Record{}, false
	}
	return *v, true
}

// ClearLastError derives a Context with no last error recorded,
// mirroring error_clear() in the original thread-local design.
func ClearLastError(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, (*Record)(nil))
}

// Package aligner produces a token-level alignment between a source
// and target text given an attention matrix, delegating the actual
// alignment algorithm to a caller-supplied Service.
package aligner

import (
	"context"
	"sync"

	"github.com/dev-mirzabicer/limdy/errctx"
	"github.com/dev-mirzabicer/limdy/memalloc"
	"github.com/dev-mirzabicer/limdy/renderer"
	"github.com/dev-mirzabicer/limdy/translator"
)

// Service aligns source and target tokens given their attention
// matrix, returning the index into targetTokens each source token
// aligns to.
type Service interface {
	Align(sourceTokens, targetTokens []renderer.Token, attn *translator.AttentionMatrix) ([]int, error)
}

// Aligner serializes calls into a Service, reserving its output
// buffer from the same pool the rest of the pipeline uses.
type Aligner struct {
	mu       sync.Mutex
	service  Service
	renderer *renderer.Renderer
	pool     *memalloc.Pool
	alloc    *memalloc.Allocator
}

// New creates an Aligner backed by service, using rend to tokenize
// the source and target text it is given.
func New(alloc *memalloc.Allocator, pool *memalloc.Pool, service Service, rend *renderer.Renderer) *Aligner {
	return &Aligner{alloc: alloc, pool: pool, service: service, renderer: rend}
}

// Align tokenizes sourceText and targetText via the configured
// Renderer, then asks the Service for an alignment over attn. The
// returned alignment indices are stored in a pool-owned int32
// buffer, matching the original component's "int **alignment"
// pool-backed output parameter.
func (a *Aligner) Align(ctx context.Context, sourceText, targetText string, lang string, attn *translator.AttentionMatrix) (context.Context, []byte, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.service == nil {
		ctx = errctx.Log(ctx, errctx.CodeInvalidArgument, errctx.LevelError, "aligner: no alignment service configured")
		return ctx, nil, 0, errctx.ErrNoHandler
	}

	ctx, sourceTokens, err := a.renderer.Tokenize(ctx, sourceText, lang)
	if err != nil {
		return ctx, nil, 0, err
	}
	ctx, targetTokens, err := a.renderer.Tokenize(ctx, targetText, lang)
	if err != nil {
		return ctx, nil, 0, err
	}

	indices, err := a.service.Align(sourceTokens, targetTokens, attn)
	if err != nil {
		ctx = errctx.Log(ctx, errctx.CodeUnknown, errctx.LevelError, "aligner: align failed: %v", err)
		return ctx, nil, 0, err
	}

	buf := a.alloc.AllocFrom(a.pool, int64(len(indices)*4))
	if buf == nil {
		ctx = errctx.Log(ctx, errctx.CodeMemoryPoolAllocFailed, errctx.LevelError, "aligner: failed to allocate %d alignment entries", len(indices))
		return ctx, nil, 0, errctx.ErrNilRecord
	}
	for i, v := range indices {
		putInt32(buf[i*4:i*4+4], int32(v))
	}

	return ctx, buf, len(indices), nil
}

// FreeAlignment releases an alignment buffer returned by Align back
// to the pool it came from.
func (a *Aligner) FreeAlignment(buf []byte) {
	if len(buf) == 0 {
		return
	}
	a.alloc.FreeTo(a.pool, buf)
}

func putInt32(b []byte, v int32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

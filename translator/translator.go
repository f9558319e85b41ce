// Package translator wraps a caller-supplied translation backend,
// staging its attention matrix output in pool memory rather than as
// ordinary Go-heap 2D slices, the same way the original component
// staged float** attention matrices out of its LimdyMemoryPool.
package translator

import (
	"context"
	"encoding/binary"
	"math"
	"sync"

	"github.com/dev-mirzabicer/limdy/errctx"
	"github.com/dev-mirzabicer/limdy/memalloc"
)

// AttentionMatrix is a rows x cols grid of float32 weights backed by
// one flat pool allocation instead of a slice of row slices.
type AttentionMatrix struct {
	buf        []byte
	rows, cols int
}

func newAttentionMatrix(buf []byte, rows, cols int) *AttentionMatrix {
	return &AttentionMatrix{buf: buf, rows: rows, cols: cols}
}

func (m *AttentionMatrix) Rows() int { return m.rows }
func (m *AttentionMatrix) Cols() int { return m.cols }

func (m *AttentionMatrix) index(row, col int) int {
	return (row*m.cols + col) * 4
}

// At returns the weight at (row, col).
func (m *AttentionMatrix) At(row, col int) float32 {
	i := m.index(row, col)
	return math.Float32frombits(binary.LittleEndian.Uint32(m.buf[i : i+4]))
}

// Set stores the weight at (row, col).
func (m *AttentionMatrix) Set(row, col int, v float32) {
	i := m.index(row, col)
	binary.LittleEndian.PutUint32(m.buf[i:i+4], math.Float32bits(v))
}

// Result is the output of one Translate call.
type Result struct {
	TranslatedText string
	Attention      *AttentionMatrix
}

// Service performs the actual translation and attention-matrix
// computation; Translator only owns memory and concurrency around it.
type Service interface {
	Translate(text, sourceLang, targetLang string) (string, error)
	AttentionMatrix(sourceText, targetText string) (rows, cols int, weights func(row, col int) float32, err error)
}

// Translator serializes calls into a Service and stages the
// resulting attention matrix in pool memory.
type Translator struct {
	mu      sync.Mutex
	service Service
	pool    *memalloc.Pool
	alloc   *memalloc.Allocator
}

// New creates a Translator backed by service, allocating attention
// matrices from pool via alloc.
func New(alloc *memalloc.Allocator, pool *memalloc.Pool, service Service) *Translator {
	return &Translator{alloc: alloc, pool: pool, service: service}
}

// Translate runs the configured Service and copies its attention
// weights into a pool-owned AttentionMatrix. The returned Result's
// Attention buffer must eventually be released with Free.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (context.Context, Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.service == nil {
		ctx = errctx.Log(ctx, errctx.CodeInvalidArgument, errctx.LevelError, "translator: no translation service configured")
		return ctx, Result{}, errctx.ErrNoHandler
	}

	translated, err := t.service.Translate(text, sourceLang, targetLang)
	if err != nil {
		ctx = errctx.Log(ctx, errctx.CodeUnknown, errctx.LevelError, "translator: translate failed: %v", err)
		return ctx, Result{}, err
	}

	rows, cols, weights, err := t.service.AttentionMatrix(text, translated)
	if err != nil {
		ctx = errctx.Log(ctx, errctx.CodeUnknown, errctx.LevelError, "translator: attention matrix failed: %v", err)
		return ctx, Result{TranslatedText: translated}, err
	}

	buf := t.alloc.AllocFrom(t.pool, int64(rows*cols*4))
	if buf == nil {
		ctx = errctx.Log(ctx, errctx.CodeMemoryPoolAllocFailed, errctx.LevelError, "translator: failed to allocate a %dx%d attention matrix", rows, cols)
		return ctx, Result{TranslatedText: translated}, errctx.ErrNilRecord
	}
	matrix := newAttentionMatrix(buf, rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			matrix.Set(r, c, weights(r, c))
		}
	}

	return ctx, Result{TranslatedText: translated, Attention: matrix}, nil
}

// Free releases an AttentionMatrix's backing buffer back to the pool
// it was allocated from.
func (t *Translator) Free(m *AttentionMatrix) {
	if m == nil {
		return
	}
	t.alloc.FreeTo(t.pool, m.buf)
}

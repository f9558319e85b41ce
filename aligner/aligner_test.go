package aligner

import (
	"context"
	"strings"
	"testing"

	"github.com/dev-mirzabicer/limdy/memalloc"
	"github.com/dev-mirzabicer/limdy/renderer"
	"github.com/dev-mirzabicer/limdy/translator"
)

type fakeTokenizer struct{}

func (fakeTokenizer) Tokenize(text, lang string) ([]renderer.Token, error) {
	var toks []renderer.Token
	for _, w := range strings.Fields(text) {
		toks = append(toks, renderer.Token{Text: w})
	}
	return toks, nil
}

type fakeAlignService struct{}

func (fakeAlignService) Align(source, target []renderer.Token, attn *translator.AttentionMatrix) ([]int, error) {
	out := make([]int, len(source))
	for i := range source {
		out[i] = i % len(target)
	}
	return out, nil
}

func newTestAllocator(t *testing.T) (*memalloc.Allocator, *memalloc.Pool) {
	t.Helper()
	a, err := memalloc.Init(memalloc.Config{SmallBlockSize: 64, SmallPoolSize: 4096, LargePoolSize: 65536, MaxPools: 2})
	if err != nil {
		t.Fatalf("memalloc.Init: %v", err)
	}
	pool, err := a.Create(4096)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a, pool
}

func TestAlignerAlignProducesPoolBackedIndices(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	rend := renderer.New(alloc, pool, fakeTokenizer{}, nil)
	al := New(alloc, pool, fakeAlignService{}, rend)

	_, buf, count, err := al.Align(context.Background(), "a b c", "x y", "en", nil)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 alignment entries, got %d", count)
	}
	if want := memalloc.AlignedSize(int64(count * 4)); int64(len(buf)) != want {
		t.Fatalf("expected a %d-byte aligned buffer for %d int32 entries, got %d bytes", want, count, len(buf))
	}
	al.FreeAlignment(buf)
}

func TestAlignerMissingServiceReportsError(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	rend := renderer.New(alloc, pool, fakeTokenizer{}, nil)
	al := New(alloc, pool, nil, rend)

	_, _, _, err := al.Align(context.Background(), "a", "b", "en", nil)
	if err == nil {
		t.Fatal("expected an error with no alignment service configured")
	}
}

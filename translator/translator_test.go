package translator

import (
	"context"
	"testing"

	"github.com/dev-mirzabicer/limdy/memalloc"
)

type fakeService struct{}

func (fakeService) Translate(text, sourceLang, targetLang string) (string, error) {
	return "translated:" + text, nil
}

func (fakeService) AttentionMatrix(sourceText, targetText string) (int, int, func(row, col int) float32, error) {
	rows, cols := 2, 3
	weights := func(row, col int) float32 {
		return float32(row*cols + col)
	}
	return rows, cols, weights, nil
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

func TestTranslatorTranslateBuildsAttentionMatrix(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	tr := New(alloc, pool, fakeService{})
	_, result, err := tr.Translate(context.Background(), "hello", "en", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.TranslatedText != "translated:hello" {
		t.Fatalf("unexpected translation: %q", result.TranslatedText)
	}
	if result.Attention.Rows() != 2 || result.Attention.Cols() != 3 {
		t.Fatalf("unexpected matrix shape: %dx%d", result.Attention.Rows(), result.Attention.Cols())
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			want := float32(r*3 + c)
			if got := result.Attention.At(r, c); got != want {
				t.Errorf("At(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
	tr.Free(result.Attention)
}

func TestTranslatorMissingServiceReportsError(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	tr := New(alloc, pool, nil)
	_, _, err := tr.Translate(context.Background(), "hello", "en", "fr")
	if err == nil {
		t.Fatal("expected an error with no translation service configured")
	}
}

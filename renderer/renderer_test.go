package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/dev-mirzabicer/limdy/memalloc"
)

type fakeTokenizer struct{}

func (fakeTokenizer) Tokenize(text, lang string) ([]Token, error) {
	var toks []Token
	for _, w := range strings.Fields(text) {
		toks = append(toks, Token{Text: w})
	}
	return toks, nil
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(tokens []Token) ([]ClassifiedToken, error) {
	out := make([]ClassifiedToken, len(tokens))
	for i, tok := range tokens {
		out[i] = ClassifiedToken{Token: tok, Classes: []TokenClass{ClassNoun}}
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

func TestRendererTokenizeAndClassify(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	r := New(alloc, pool, fakeTokenizer{}, fakeClassifier{})
	ctx, tokens, err := r.Tokenize(context.Background(), "hello world", "en")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}

	ctx, classified, err := r.Classify(ctx, tokens)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(classified) != 2 {
		t.Fatalf("expected 2 classified tokens, got %d", len(classified))
	}

	_, elements, err := r.ExtractElements(ctx, classified)
	if err != nil {
		t.Fatalf("ExtractElements: %v", err)
	}
	if len(elements) != 1 || elements[0].Type != ElementPhrase {
		t.Fatalf("expected a single phrase element, got %+v", elements)
	}
}

func TestRendererMissingServiceReportsError(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	r := New(alloc, pool, nil, nil)
	_, _, err := r.Tokenize(context.Background(), "hello", "en")
	if err == nil {
		t.Fatal("expected an error with no tokenization service configured")
	}
}

func TestRendererRenderFullPipeline(t *testing.T) {
	alloc, pool := newTestAllocator(t)
	defer alloc.Cleanup()

	r := New(alloc, pool, fakeTokenizer{}, fakeClassifier{})
	_, result, err := r.Render(context.Background(), "the quick fox", "en")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(result.Tokens) != 3 || len(result.ClassifiedTokens) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

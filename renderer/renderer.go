package renderer

import (
	"context"
	"sync"

	"github.com/dev-mirzabicer/limdy/errctx"
	"github.com/dev-mirzabicer/limdy/memalloc"
)

// TokenClass classifies a single token once a ClassificationService
// has run over it.
type TokenClass int

const (
	ClassNoun TokenClass = iota
	ClassVerb
	ClassAdjective
)

// Token is the smallest unit a TokenizationService produces.
type Token struct {
	Text string
}

// ClassifiedToken pairs a Token with the classes a
// ClassificationService assigned it.
type ClassifiedToken struct {
	Token         Token
	Classes       []TokenClass
	IsPlaceholder bool
}

// ElementType distinguishes the three shapes a TypedLinguisticElement
// can take.
type ElementType int

const (
	ElementVocab ElementType = iota
	ElementPhrase
	ElementSyntax
)

// TypedLinguisticElement is a vocabulary entry, phrase, or syntax
// unit extracted from classified text.
type TypedLinguisticElement struct {
	Type   ElementType
	Vocab  Token
	Tokens []ClassifiedToken
}

// Result accumulates everything a Renderer has produced for one
// piece of text across Tokenize, Classify, and ExtractElements.
type Result struct {
	Tokens           []Token
	ClassifiedTokens []ClassifiedToken
	Elements         []TypedLinguisticElement
}

// TokenizationService splits text into Tokens for a given language.
type TokenizationService interface {
	Tokenize(text string, lang string) ([]Token, error)
}

// ClassificationService assigns TokenClasses to a slice of Tokens.
type ClassificationService interface {
	Classify(tokens []Token) ([]ClassifiedToken, error)
}

// Renderer drives a TokenizationService and a ClassificationService
// over one pool-backed scratch arena, matching the concurrency and
// memory-ownership shape of the other components in this module.
type Renderer struct {
	mu    sync.Mutex
	pool  *memalloc.Pool
	alloc *memalloc.Allocator
	tok   TokenizationService
	cls   ClassificationService
}

// New creates a Renderer that reserves scratch memory from pool via
// alloc. tok and cls may be nil; calling Tokenize or Classify without
// one configured reports CodeInvalidArgument.
func New(alloc *memalloc.Allocator, pool *memalloc.Pool, tok TokenizationService, cls ClassificationService) *Renderer {
	return &Renderer{alloc: alloc, pool: pool, tok: tok, cls: cls}
}

// Tokenize splits text using the configured TokenizationService,
// reserving a pool scratch buffer sized to the input for the
// duration of the call, mirroring how the original renderer staged
// its token arrays out of its own LimdyMemoryPool.
func (r *Renderer) Tokenize(ctx context.Context, text string, lang string) (context.Context, []Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tok == nil {
		ctx = errctx.Log(ctx, errctx.CodeInvalidArgument, errctx.LevelError, "renderer: no tokenization service configured")
		return ctx, nil, errctx.ErrNoHandler
	}

	scratch := r.alloc.AllocFrom(r.pool, int64(len(text))+1)
	if scratch == nil {
		ctx = errctx.Log(ctx, errctx.CodeMemoryPoolAllocFailed, errctx.LevelError, "renderer: failed to reserve tokenizer scratch space")
		return ctx, nil, errctx.ErrNilRecord
	}
	defer r.alloc.FreeTo(r.pool, scratch)
	copy(scratch, text)

	tokens, err := r.tok.Tokenize(text, lang)
	if err != nil {
		ctx = errctx.Log(ctx, errctx.CodeUnknown, errctx.LevelError, "renderer: tokenize failed: %v", err)
		return ctx, nil, err
	}
	return ctx, tokens, nil
}

// Classify assigns TokenClasses to tokens using the configured
// ClassificationService.
func (r *Renderer) Classify(ctx context.Context, tokens []Token) (context.Context, []ClassifiedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cls == nil {
		ctx = errctx.Log(ctx, errctx.CodeInvalidArgument, errctx.LevelError, "renderer: no classification service configured")
		return ctx, nil, errctx.ErrNoHandler
	}

	classified, err := r.cls.Classify(tokens)
	if err != nil {
		ctx = errctx.Log(ctx, errctx.CodeUnknown, errctx.LevelError, "renderer: classify failed: %v", err)
		return ctx, nil, err
	}
	return ctx, classified, nil
}

// ExtractElements groups classified tokens into vocabulary and phrase
// elements. Each maximal run of non-placeholder tokens becomes one
// phrase, whatever classes its tokens carry; each placeholder token
// becomes its own vocab entry. No syntax elements are produced.
func (r *Renderer) ExtractElements(ctx context.Context, classified []ClassifiedToken) (context.Context, []TypedLinguisticElement, error) {
	var elements []TypedLinguisticElement
	var run []ClassifiedToken

	flush := func() {
		if len(run) == 0 {
			return
		}
		elements = append(elements, TypedLinguisticElement{Type: ElementPhrase, Tokens: append([]ClassifiedToken(nil), run...)})
		run = run[:0]
	}

	for _, ct := range classified {
		if ct.IsPlaceholder {
			flush()
			elements = append(elements, TypedLinguisticElement{Type: ElementVocab, Vocab: ct.Token})
			continue
		}
		run = append(run, ct)
	}
	flush()
	return ctx, elements, nil
}

// Render runs Tokenize, Classify, and ExtractElements in sequence,
// collecting every intermediate result.
func (r *Renderer) Render(ctx context.Context, text string, lang string) (context.Context, Result, error) {
	var result Result

	ctx, tokens, err := r.Tokenize(ctx, text, lang)
	if err != nil {
		return ctx, result, err
	}
	result.Tokens = tokens

	ctx, classified, err := r.Classify(ctx, tokens)
	if err != nil {
		return ctx, result, err
	}
	result.ClassifiedTokens = classified

	ctx, elements, err := r.ExtractElements(ctx, classified)
	if err != nil {
		return ctx, result, err
	}
	result.Elements = elements

	return ctx, result, nil
}

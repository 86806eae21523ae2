// Package mock provides a test double for the analyzer.Provider interface.
//
// Use Provider to return pre-built parsed documents without a live NLP
// sidecar and to verify which texts were submitted for analysis. Canned
// documents are keyed by their exact input text; unmatched texts fall back
// to DefaultDoc or, when that is nil, to a naive whitespace tokenization.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// ParseCall records a single invocation of Parse or one text of a Pipe call.
type ParseCall struct {
	// Ctx is the context passed to the call.
	Ctx context.Context
	// Text is the input text.
	Text string
}

// Provider is a mock implementation of analyzer.Provider.
type Provider struct {
	mu sync.Mutex

	// Docs maps input text to the document returned for it.
	Docs map[string]*analyzer.Doc

	// DefaultDoc is returned for texts missing from Docs. When nil, a
	// naive whitespace tokenization of the input is returned instead so
	// tests that only care about token counts still work.
	DefaultDoc *analyzer.Doc

	// ParseErr, if non-nil, is returned as the error from Parse and Pipe.
	ParseErr error

	// ParseCalls records every analyzed text in order.
	ParseCalls []ParseCall
}

// Parse records the call and returns the canned document for text.
func (p *Provider) Parse(ctx context.Context, text string) (*analyzer.Doc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ParseCalls = append(p.ParseCalls, ParseCall{Ctx: ctx, Text: text})
	if p.ParseErr != nil {
		return nil, p.ParseErr
	}
	return p.docFor(text), nil
}

// Pipe records one call per text and returns the canned documents in input
// order. batchSize is ignored.
func (p *Provider) Pipe(ctx context.Context, texts []string, _ int) ([]*analyzer.Doc, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ParseErr != nil {
		return nil, p.ParseErr
	}
	out := make([]*analyzer.Doc, len(texts))
	for i, t := range texts {
		p.ParseCalls = append(p.ParseCalls, ParseCall{Ctx: ctx, Text: t})
		out[i] = p.docFor(t)
	}
	return out, nil
}

// docFor resolves the document for text. Callers must hold p.mu.
func (p *Provider) docFor(text string) *analyzer.Doc {
	if d, ok := p.Docs[text]; ok {
		return d
	}
	if p.DefaultDoc != nil {
		return p.DefaultDoc
	}
	return NaiveDoc(text)
}

// Reset clears all recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ParseCalls = nil
}

// NaiveDoc builds a minimal single-sentence document by whitespace
// splitting. Every token is its own lemma with an empty POS; heads point at
// token 0. Useful as a fallback when a test does not depend on real parses.
func NaiveDoc(text string) *analyzer.Doc {
	fields := strings.Fields(text)
	d := &analyzer.Doc{Text: text}
	for i, f := range fields {
		d.Tokens = append(d.Tokens, analyzer.Token{
			Text:  f,
			Lower: strings.ToLower(f),
			Lemma: strings.ToLower(f),
			I:     i,
			Head:  0,
		})
	}
	if len(d.Tokens) > 0 {
		d.Sents = []analyzer.Span{{Text: text, Start: 0, End: len(d.Tokens)}}
	}
	return d
}

// Ensure Provider implements analyzer.Provider at compile time.
var _ analyzer.Provider = (*Provider)(nil)

// Package nlp implements the linguistic half of the drift-scoring
// pipeline: text preprocessing for embedding, weighted entity extraction,
// sentence- and message-level analysis, and entity-overlap scoring.
//
// All analysis values produced here are immutable and request-scoped. The
// only external dependency is an [analyzer.Provider]; everything else is
// deterministic on its parsed documents.
package nlp

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// analyzerBatchSize is the number of cleaned texts sent per analyzer batch
// when preprocessing in bulk.
const analyzerBatchSize = 50

// removeWords is the fixed deletion set for embedding preprocessing.
// Everything here carries no topic signal for a paraphrase encoder:
// stripping it widens the similarity gap between related and unrelated
// messages. Lemmatized forms where lemmatization applies.
var removeWords = map[string]bool{
	// Articles & determiners
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"these": true, "those": true, "some": true, "any": true,
	// Politeness markers
	"please": true, "pls": true, "plz": true, "thanks": true, "thank": true,
	"thankyou": true, "ty": true, "sorry": true,
	// Fillers
	"just": true, "really": true, "very": true, "quite": true, "kind": true,
	"kinda": true, "sort": true, "sortof": true, "actually": true,
	"basically": true, "literally": true, "so": true, "much": true,
	"um": true, "uh": true, "well": true, "like": true, "ok": true,
	"okay": true, "yeah": true, "yes": true, "no": true, "right": true,
	// Question scaffolding (lemmatized forms)
	"can": true, "could": true, "would": true, "should": true, "do": true,
	"be": true, "have": true, "will": true, "wonder": true, "maybe": true,
	"perhaps": true, "possible": true, "possibly": true,
	// Common low-signal verbs (lemmatized forms)
	"get": true, "go": true, "come": true, "let": true, "make": true,
	"take": true, "give": true, "need": true, "want": true, "know": true,
	"think": true, "see": true, "look": true, "find": true, "tell": true,
	"say": true, "ask": true,
	// Pronouns
	"i": true, "me": true, "my": true, "mine": true, "we": true, "us": true,
	"our": true, "ours": true, "you": true, "your": true, "yours": true,
	"he": true, "him": true, "his": true, "she": true, "her": true,
	"hers": true, "it": true, "its": true, "they": true, "them": true,
	"their": true, "theirs": true,
	"-pron-": true, // spaCy's pronoun placeholder
	// Deictic question words
	"here": true, "there": true, "now": true, "then": true, "where": true,
	"when": true, "what": true, "how": true, "why": true, "which": true,
	// Prepositions
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "as": true,
	// Conjunctions
	"and": true, "or": true, "but": true, "if": true, "because": true,
	"while": true, "although": true,
}

// fallbackFilter is the reduced filler set used when lemmatization drops
// too much of the input and the preprocessor falls back to a plain token
// filter.
var fallbackFilter = map[string]bool{
	"um": true, "uh": true, "like": true, "just": true,
	"really": true, "actually": true, "basically": true,
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Pipeline runs preprocessing and message analysis on top of an analyzer
// provider. It is stateless apart from the provider handle and safe for
// concurrent use.
type Pipeline struct {
	nlp analyzer.Provider
}

// NewPipeline creates a Pipeline backed by the given analyzer provider.
func NewPipeline(p analyzer.Provider) *Pipeline {
	return &Pipeline{nlp: p}
}

// clean lowercases text, replaces every character outside [A-Za-z0-9_\s]
// with a space, collapses whitespace runs, and trims.
func clean(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Preprocess normalizes raw text into a space-delimited stream of
// topic-bearing lemmas suitable as encoder input. Empty or whitespace-only
// input returns an empty string without calling the analyzer.
func (p *Pipeline) Preprocess(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	cleaned := clean(text)

	doc, err := p.nlp.Parse(ctx, cleaned)
	if err != nil {
		return "", fmt.Errorf("nlp: preprocess: %w", err)
	}
	return lemmaFilter(doc, cleaned), nil
}

// PreprocessBatch preprocesses texts in analyzer batches. The returned
// slice has the same length as texts and the i-th output corresponds to
// texts[i]; empty inputs map to empty outputs and are never dropped.
func (p *Pipeline) PreprocessBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	cleaned := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			cleaned[i] = ""
			continue
		}
		cleaned[i] = clean(t)
	}

	docs, err := p.nlp.Pipe(ctx, cleaned, analyzerBatchSize)
	if err != nil {
		return nil, fmt.Errorf("nlp: preprocess batch: %w", err)
	}
	if len(docs) != len(texts) {
		return nil, fmt.Errorf("nlp: preprocess batch: expected %d docs, got %d", len(texts), len(docs))
	}

	out := make([]string, len(texts))
	for i, doc := range docs {
		out[i] = lemmaFilter(doc, cleaned[i])
	}
	return out, nil
}

// lemmaFilter keeps topic-bearing lemmas from doc. When fewer than two
// lemmas survive, it falls back to a plain token filter over the cleaned
// text — a quality concern only, never surfaced to callers.
func lemmaFilter(doc *analyzer.Doc, cleaned string) string {
	var lemmas []string
	for _, tok := range doc.Tokens {
		lemma := strings.ToLower(tok.Lemma)
		if removeWords[lemma] || len(lemma) <= 1 || tok.IsPunct || tok.IsSpace {
			continue
		}
		lemmas = append(lemmas, lemma)
	}
	if len(lemmas) >= 2 {
		return strings.Join(lemmas, " ")
	}

	var kept []string
	for _, tok := range strings.Fields(cleaned) {
		if fallbackFilter[tok] || len(tok) <= 1 {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

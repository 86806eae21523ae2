// Package analyzer defines the Provider interface for linguistic analysis
// backends.
//
// An analyzer provider wraps a pretrained NLP pipeline (e.g., a spaCy model
// served by a sidecar process) that turns raw text into a parsed [Doc]:
// tokens with lemmas, part-of-speech tags and dependency relations, named
// entity spans, noun chunks, and sentence boundaries. The drift-scoring
// pipeline consumes these documents; it never talks to the NLP model
// directly.
//
// Implementations must be safe for concurrent use.
package analyzer

import "context"

// Provider is the abstraction over any linguistic-analysis backend.
//
// Implementations must be safe for concurrent use. If the underlying model
// is not re-entrant, the implementation is responsible for serializing
// access (see the spacyd client, which bounds in-flight calls with a
// weighted semaphore).
type Provider interface {
	// Parse analyzes a single text and returns the parsed document.
	// An empty input yields a Doc with no tokens, not an error.
	Parse(ctx context.Context, text string) (*Doc, error)

	// Pipe analyzes a slice of texts, batching calls to the backend in
	// groups of batchSize (a non-positive batchSize selects the
	// implementation default). The returned slice has the same length as
	// texts and the i-th document corresponds to texts[i]. Empty inputs
	// map to empty documents and are never dropped.
	Pipe(ctx context.Context, texts []string, batchSize int) ([]*Doc, error)
}

// Coarse universal POS tags used by the drift pipeline. Only the tags the
// scoring rules inspect are named here; Token.POS may carry any tag the
// backend emits.
const (
	POSNoun       = "NOUN"
	POSProperNoun = "PROPN"
	POSPronoun    = "PRON"
	POSDeterminer = "DET"
)

// Token is a single token with its linguistic annotations.
type Token struct {
	// Text is the surface form as it appears in the source.
	Text string `json:"text"`

	// Lower is the lowercased surface form.
	Lower string `json:"lower"`

	// Lemma is the base form (e.g., "running" → "run").
	Lemma string `json:"lemma"`

	// POS is the coarse universal POS tag (e.g., "NOUN", "PRON").
	POS string `json:"pos"`

	// Tag is the fine-grained, language-specific tag (e.g., "NNS").
	Tag string `json:"tag"`

	// Dep is the dependency relation to the head token (e.g., "nsubj").
	Dep string `json:"dep"`

	// I is the token's index within its document.
	I int `json:"i"`

	// Head is the index of the token's syntactic head. The root token's
	// head is its own index.
	Head int `json:"head"`

	IsStop  bool `json:"is_stop"`
	IsPunct bool `json:"is_punct"`
	IsSpace bool `json:"is_space"`
}

// Span is a contiguous token range within a document. Named entity spans
// carry a Label ("PERSON", "ORG", ...); noun chunks and sentences do not.
type Span struct {
	// Text is the surface text of the span.
	Text string `json:"text"`

	// Label is the NER label for entity spans; empty otherwise.
	Label string `json:"label,omitempty"`

	// Start is the index of the first token in the span.
	Start int `json:"start"`

	// End is the index one past the last token in the span.
	End int `json:"end"`
}

// Doc is a parsed document. It is an immutable value; the drift pipeline
// never mutates a Doc after the provider returns it.
type Doc struct {
	// Text is the original input text.
	Text string `json:"text"`

	Tokens []Token `json:"tokens"`

	// Ents holds named entity spans in document order.
	Ents []Span `json:"ents"`

	// Chunks holds noun-chunk spans in document order.
	Chunks []Span `json:"noun_chunks"`

	// Sents holds sentence spans in document order. A document with no
	// sentence segmentation information behaves as a single sentence.
	Sents []Span `json:"sents"`
}

// Children returns the indices of tokens whose head is i, in ascending
// order. The root token is not its own child.
func (d *Doc) Children(i int) []int {
	var out []int
	for j := range d.Tokens {
		if j != i && d.Tokens[j].Head == i {
			out = append(out, j)
		}
	}
	return out
}

// Subtree returns the indices of token i and all its syntactic descendants
// in ascending token order.
func (d *Doc) Subtree(i int) []int {
	if i < 0 || i >= len(d.Tokens) {
		return nil
	}
	in := make([]bool, len(d.Tokens))
	in[i] = true
	// Heads always point upward toward the root, so a fixed-point sweep
	// over the flat token slice collects the subtree without recursion.
	for changed := true; changed; {
		changed = false
		for j := range d.Tokens {
			if in[j] {
				continue
			}
			h := d.Tokens[j].Head
			if h != j && in[h] {
				in[j] = true
				changed = true
			}
		}
	}
	var out []int
	for j, ok := range in {
		if ok {
			out = append(out, j)
		}
	}
	return out
}

// SpanTokens returns the tokens covered by s.
func (d *Doc) SpanTokens(s Span) []Token {
	if s.Start < 0 || s.End > len(d.Tokens) || s.Start > s.End {
		return nil
	}
	return d.Tokens[s.Start:s.End]
}

// Sentences splits d into one sub-document per sentence. Token indices,
// heads, entity spans, and noun chunks are re-based to each sentence. A
// head outside the sentence is clamped to the token itself, making that
// token the sentence-local root. A document without sentence spans is
// returned as a single-element slice containing d itself.
func (d *Doc) Sentences() []*Doc {
	if len(d.Sents) == 0 {
		return []*Doc{d}
	}
	out := make([]*Doc, 0, len(d.Sents))
	for _, sent := range d.Sents {
		sub := &Doc{Text: sent.Text}
		for _, t := range d.SpanTokens(sent) {
			nt := t
			nt.I = t.I - sent.Start
			if t.Head < sent.Start || t.Head >= sent.End {
				nt.Head = nt.I
			} else {
				nt.Head = t.Head - sent.Start
			}
			sub.Tokens = append(sub.Tokens, nt)
		}
		sub.Ents = rebaseSpans(d.Ents, sent)
		sub.Chunks = rebaseSpans(d.Chunks, sent)
		sub.Sents = []Span{{Text: sent.Text, Start: 0, End: len(sub.Tokens)}}
		out = append(out, sub)
	}
	return out
}

// rebaseSpans keeps the spans fully contained in sent and shifts their
// token offsets to be sentence-local.
func rebaseSpans(spans []Span, sent Span) []Span {
	var out []Span
	for _, s := range spans {
		if s.Start >= sent.Start && s.End <= sent.End {
			out = append(out, Span{
				Text:  s.Text,
				Label: s.Label,
				Start: s.Start - sent.Start,
				End:   s.End - sent.Start,
			})
		}
	}
	return out
}

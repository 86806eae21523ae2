package nlp

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// The regexes below are behavioral contracts for drift scoring: they must
// stay byte-for-byte stable so scores remain reproducible across releases.
var (
	preferenceRe = regexp.MustCompile(`(?i)\b(prefer|rather|instead of|better than|over|compared to|versus|vs\.?)\b`)

	topicPivotRe = regexp.MustCompile(`(?i)\b(back to|returning to|going back to|anyway|speaking of|on another note|changing topic|different subject|but about|so about|regarding)\b`)

	implicitQuestionRe = regexp.MustCompile(`(?i)\b(tell me|explain|describe|show me|help me understand|i wonder|i'?m curious|wondering if|interested to know|want to know|need to know|let me know)\b`)
)

// interrogatives are question words that mark a question when sentence-initial.
var interrogatives = map[string]bool{
	"who": true, "what": true, "where": true, "when": true, "why": true,
	"how": true, "which": true, "whom": true, "whose": true,
}

// auxInversions are auxiliary verbs that mark a question when
// sentence-initial ("Can you...", "Did they...").
var auxInversions = map[string]bool{
	"can": true, "could": true, "would": true, "should": true, "do": true,
	"does": true, "did": true, "is": true, "are": true, "was": true,
	"were": true, "will": true, "have": true, "has": true,
}

// demonstratives and anaphoric pronoun groups checked by anaphora detection.
var (
	demonstratives  = map[string]bool{"this": true, "that": true, "these": true, "those": true}
	pluralPronouns  = map[string]bool{"they": true, "them": true, "their": true}
	referentialDeps = map[string]bool{"nsubj": true, "nsubjpass": true, "dobj": true, "pobj": true, "attr": true}
)

// SentenceAnalysis holds the linguistic facts of a single sentence.
type SentenceAnalysis struct {
	Text            string
	IsQuestion      bool
	HasAnaphoricRef bool
	HasPreference   bool
	HasTopicPivot   bool
	Entities        *EntityAnalysis

	// PreferredPhrase and RejectedPhrase are the noun phrases extracted
	// from a preference statement. Either may be empty.
	PreferredPhrase string
	RejectedPhrase  string
}

// MessageAnalysis aggregates sentence analyses over a whole message.
type MessageAnalysis struct {
	Sentences       []SentenceAnalysis
	IsQuestion      bool
	HasAnaphoricRef bool
	HasPreference   bool
	HasTopicPivot   bool

	// AllEntities is extracted from the whole parsed document rather than
	// the union of per-sentence sets, so cross-sentence noun chunks and
	// entities are captured once with stable weights.
	AllEntities *EntityAnalysis

	// IsCompound reports whether the message has more than one sentence.
	IsCompound bool

	// PivotDetected reports a compound pivot: the first sentence reacts to
	// prior context while later sentences introduce new entities.
	PivotDetected bool

	PreferredPhrase string
	RejectedPhrase  string
}

// IsQuestionSentence reports whether the sentence is an explicit or
// implicit question: a question mark anywhere, an interrogative or
// inverted auxiliary as first token, or an implicit-question phrase.
func IsQuestionSentence(doc *analyzer.Doc, rawText string) bool {
	if strings.Contains(rawText, "?") {
		return true
	}
	if len(doc.Tokens) > 0 {
		first := strings.ToLower(doc.Tokens[0].Text)
		if interrogatives[first] || auxInversions[first] {
			return true
		}
	}
	return implicitQuestionRe.MatchString(rawText)
}

// HasAnaphoricReference reports whether the sentence probably refers to
// something outside itself. Demonstratives count only near the sentence
// start or in subject position; "it" is suppressed when a local referent
// exists or when expletive; "they/them/their" count only when no plural
// noun is present locally.
func HasAnaphoricReference(doc *analyzer.Doc) bool {
	localReferents := make(map[string]bool)
	for _, tok := range doc.Tokens {
		if tok.POS == analyzer.POSNoun || tok.POS == analyzer.POSProperNoun {
			localReferents[strings.ToLower(tok.Lemma)] = true
		}
	}

	hasPluralNoun := false
	for _, tok := range doc.Tokens {
		if tok.Tag == "NNS" || tok.Tag == "NNPS" {
			hasPluralNoun = true
			break
		}
	}

	for _, tok := range doc.Tokens {
		lower := strings.ToLower(tok.Text)

		// "That's cool" (reactive) vs "I think that's wrong" (local).
		if demonstratives[lower] {
			if tok.I <= 2 || tok.Dep == "nsubj" || tok.Dep == "nsubjpass" {
				if referentialDeps[tok.Dep] {
					return true
				}
				if tok.POS == analyzer.POSPronoun {
					return true
				}
			}
		}

		// "my car, it's making noise" — "it" binds to "car" locally;
		// "it's really cool" — "it" points at previous context.
		if lower == "it" || lower == "its" {
			if lower == "it" && tok.Dep == "expl" {
				continue
			}
			if len(localReferents) > 0 {
				continue
			}
			if tok.POS == analyzer.POSPronoun || tok.POS == analyzer.POSDeterminer {
				return true
			}
		}

		if pluralPronouns[lower] {
			if (tok.POS == analyzer.POSPronoun || tok.POS == analyzer.POSDeterminer) && !hasPluralNoun {
				return true
			}
		}
	}

	return false
}

// DetectPreference reports whether the sentence states a preference or
// comparison, and extracts the preferred and rejected noun phrases where
// the dependency structure allows ("I prefer X to Y", "X over Y"). Either
// phrase may remain empty; in particular "X over Y" leaves preferred unset
// when the head of "over" is not a noun.
func DetectPreference(doc *analyzer.Doc, rawText string) (bool, string, string) {
	if !preferenceRe.MatchString(rawText) {
		return false, "", ""
	}

	var preferred, rejected string

	for i, tok := range doc.Tokens {
		lower := strings.ToLower(tok.Text)

		if lower == "prefer" || lower == "rather" {
			for _, ci := range doc.Children(i) {
				child := doc.Tokens[ci]
				switch {
				case child.Dep == "dobj":
					preferred = nounPhrase(doc, ci)
				case child.Dep == "prep" && strings.ToLower(child.Text) == "to":
					for _, pi := range doc.Children(ci) {
						if doc.Tokens[pi].Dep == "pobj" {
							rejected = nounPhrase(doc, pi)
						}
					}
				}
			}
		}

		if lower == "over" && tok.Dep == "prep" {
			for _, pi := range doc.Children(i) {
				if doc.Tokens[pi].Dep == "pobj" {
					rejected = nounPhrase(doc, pi)
				}
			}
			head := doc.Tokens[tok.Head]
			if head.POS == analyzer.POSNoun || head.POS == analyzer.POSProperNoun {
				preferred = nounPhrase(doc, tok.Head)
			}
		}
	}

	return true, preferred, rejected
}

// nounPhrase renders the full noun phrase rooted at token i: the surface
// text of every token in its dependency subtree, in ascending token order.
func nounPhrase(doc *analyzer.Doc, i int) string {
	idxs := doc.Subtree(i)
	sort.Ints(idxs)
	parts := make([]string, 0, len(idxs))
	for _, j := range idxs {
		parts = append(parts, doc.Tokens[j].Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// HasTopicPivot reports whether the raw text carries a lexical
// topic-switch cue ("anyway", "back to", "speaking of", ...).
func HasTopicPivot(rawText string) bool {
	return topicPivotRe.MatchString(rawText)
}

// AnalyzeSentence runs all sentence-level detectors on one parsed sentence
// and its raw surface text.
func AnalyzeSentence(doc *analyzer.Doc, rawText string) SentenceAnalysis {
	hasPref, preferred, rejected := DetectPreference(doc, rawText)
	return SentenceAnalysis{
		Text:            rawText,
		IsQuestion:      IsQuestionSentence(doc, rawText),
		HasAnaphoricRef: HasAnaphoricReference(doc),
		HasPreference:   hasPref,
		HasTopicPivot:   HasTopicPivot(rawText),
		Entities:        ExtractWeightedEntities(doc),
		PreferredPhrase: preferred,
		RejectedPhrase:  rejected,
	}
}

// AnalyzeMessage parses text and aggregates per-sentence analysis into a
// message verdict, including compound-pivot detection.
func (p *Pipeline) AnalyzeMessage(ctx context.Context, text string) (*MessageAnalysis, error) {
	doc, err := p.nlp.Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("nlp: analyze message: %w", err)
	}
	return AnalyzeParsedMessage(doc), nil
}

// AnalyzeParsedMessage is AnalyzeMessage for an already-parsed document.
func AnalyzeParsedMessage(doc *analyzer.Doc) *MessageAnalysis {
	sentDocs := doc.Sentences()

	m := &MessageAnalysis{
		AllEntities: ExtractWeightedEntities(doc),
		IsCompound:  len(sentDocs) > 1,
	}

	for _, sd := range sentDocs {
		s := AnalyzeSentence(sd, sd.Text)
		m.Sentences = append(m.Sentences, s)

		m.IsQuestion = m.IsQuestion || s.IsQuestion
		m.HasAnaphoricRef = m.HasAnaphoricRef || s.HasAnaphoricRef
		m.HasPreference = m.HasPreference || s.HasPreference
		m.HasTopicPivot = m.HasTopicPivot || s.HasTopicPivot

		if s.PreferredPhrase != "" {
			m.PreferredPhrase = s.PreferredPhrase
		}
		if s.RejectedPhrase != "" {
			m.RejectedPhrase = s.RejectedPhrase
		}
	}

	// Compound pivot: an anaphoric opener followed by sentences that bring
	// in at least one entity the opener did not mention.
	if m.IsCompound && m.Sentences[0].HasAnaphoricRef {
		firstSet := m.Sentences[0].Entities.LemmaSet()
		for _, s := range m.Sentences[1:] {
			for _, e := range s.Entities.Entities {
				if !firstSet[e.Lemma] {
					m.PivotDetected = true
					break
				}
			}
			if m.PivotDetected {
				break
			}
		}
	}

	return m
}

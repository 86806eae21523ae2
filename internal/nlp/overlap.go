package nlp

import (
	"sort"
	"strings"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// OverlapResult is the weighted entity overlap between two analyzed
// messages, always computed current-against-previous.
type OverlapResult struct {
	// Score is shared weight over the current message's total weight.
	// Zero when the current message has no weighted entities. Not
	// clamped here; the HTTP layer clamps to [0, 1] for responses.
	Score float64

	// Shared lists the lemmas present in both messages, sorted.
	Shared []string

	// NewWeight is the summed weight of current entities absent from the
	// previous message.
	NewWeight float64
}

// Overlap computes the weighted entity overlap of current against previous.
func Overlap(current, previous *EntityAnalysis) OverlapResult {
	prevSet := previous.LemmaSet()

	var res OverlapResult
	var sharedWeight float64
	for _, e := range current.Entities {
		if prevSet[e.Lemma] {
			res.Shared = append(res.Shared, e.Lemma)
			sharedWeight += e.Weight
		} else {
			res.NewWeight += e.Weight
		}
	}
	sort.Strings(res.Shared)

	if current.TotalWeight > 0 {
		res.Score = sharedWeight / current.TotalWeight
	}
	return res
}

// LooseEntitySet builds the recall-oriented entity set used by the
// entity-overlap endpoint: NER span texts, noun/proper-noun lemmas and
// surface forms longer than 3 characters, noun-chunk texts, and every
// non-stop chunk token longer than 3 characters (lemma and surface). All
// lowercased. This looser form answers "did this reply reference a rare
// term from that message?" and is not used for weighted topic scoring.
func LooseEntitySet(doc *analyzer.Doc) map[string]bool {
	set := make(map[string]bool)

	for _, ent := range doc.Ents {
		set[strings.ToLower(ent.Text)] = true
	}

	for _, tok := range doc.Tokens {
		if tok.POS != analyzer.POSNoun && tok.POS != analyzer.POSProperNoun {
			continue
		}
		if lemma := strings.ToLower(tok.Lemma); len(lemma) > 3 {
			set[lemma] = true
		}
		if surface := strings.ToLower(tok.Text); len(surface) > 3 {
			set[surface] = true
		}
	}

	for _, chunk := range doc.Chunks {
		set[strings.ToLower(chunk.Text)] = true
		for _, tok := range doc.SpanTokens(chunk) {
			if tok.IsStop {
				continue
			}
			if lemma := strings.ToLower(tok.Lemma); len(lemma) > 3 {
				set[lemma] = true
			}
			if surface := strings.ToLower(tok.Text); len(surface) > 3 {
				set[surface] = true
			}
		}
	}

	return set
}

// LooseOverlap scores two loose entity sets by shared cardinality over the
// smaller set. Returns the score and the sorted shared terms.
func LooseOverlap(set1, set2 map[string]bool) (float64, []string) {
	var shared []string
	for term := range set1 {
		if set2[term] {
			shared = append(shared, term)
		}
	}
	sort.Strings(shared)

	smaller := min(len(set1), len(set2))
	if smaller == 0 {
		return 0, shared
	}
	return float64(len(shared)) / float64(smaller), shared
}

// SortedTerms returns the terms of a loose entity set in sorted order.
func SortedTerms(set map[string]bool) []string {
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

package nlp

import (
	"strings"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// Synthetic entity kinds for topic-bearing words not caught by NER.
const (
	KindProperNoun = "PROPN"
	KindNoun       = "NOUN"
	KindNounChunk  = "NOUN_CHUNK"
)

// entityWeights maps NER labels to topic significance. Higher weight means
// the entity is a stronger topic indicator.
var entityWeights = map[string]float64{
	"PERSON":      3.0, // people are strong topic indicators
	"ORG":         2.5,
	"GPE":         2.5,
	"LOC":         2.0,
	"PRODUCT":     2.0,
	"EVENT":       2.0,
	"WORK_OF_ART": 1.5,
	"NORP":        1.5,
	"FAC":         1.5,
	"DATE":        0.5,
	"TIME":        0.5,
	"MONEY":       0.5,
	"QUANTITY":    0.3,
	"CARDINAL":    0.2,
	"ORDINAL":     0.2,
}

// Weights for bare nouns and proper nouns not caught by NER, and the
// high-value threshold used across the pipeline.
const (
	defaultNounWeight   = 1.0
	defaultProperWeight = 2.0
	highValueThreshold  = 2.0
)

// WeightedEntity is an entity with a weight derived from its kind.
// Identity is by Lemma (lowercased); duplicates within one analysis
// collapse on first sight.
type WeightedEntity struct {
	// Surface is the text as it appears in the source.
	Surface string

	// Lemma is the lowercased identity key.
	Lemma string

	// Kind is the NER label, or one of the synthetic kinds PROPN, NOUN,
	// NOUN_CHUNK.
	Kind string

	// Weight is the topic-significance weight.
	Weight float64
}

// EntityAnalysis is the weighted entity set of one document. Entities keep
// their insertion order; lemmas are unique.
type EntityAnalysis struct {
	Entities    []WeightedEntity
	TotalWeight float64

	// HighValueLemmas lists lemmas whose weight is >= 2.0, in insertion
	// order.
	HighValueLemmas []string
}

// LemmaSet returns the set of entity lemmas.
func (a *EntityAnalysis) LemmaSet() map[string]bool {
	set := make(map[string]bool, len(a.Entities))
	for _, e := range a.Entities {
		set[e.Lemma] = true
	}
	return set
}

// ExtractWeightedEntities produces the weighted entity set of a parsed
// document. Three passes — NER spans, bare nouns/proper nouns, noun
// chunks — with first-writer-wins deduplication by lemma.
func ExtractWeightedEntities(doc *analyzer.Doc) *EntityAnalysis {
	a := &EntityAnalysis{}
	seen := make(map[string]bool)

	add := func(e WeightedEntity) {
		a.Entities = append(a.Entities, e)
		a.TotalWeight += e.Weight
		if e.Weight >= highValueThreshold {
			a.HighValueLemmas = append(a.HighValueLemmas, e.Lemma)
		}
		seen[e.Lemma] = true
	}

	// Named entities from NER.
	for _, ent := range doc.Ents {
		lemma := strings.ToLower(ent.Text)
		if seen[lemma] || len(lemma) <= 2 {
			continue
		}
		weight, ok := entityWeights[ent.Label]
		if !ok {
			weight = 1.0
		}
		add(WeightedEntity{Surface: ent.Text, Lemma: lemma, Kind: ent.Label, Weight: weight})
	}

	// Nouns and proper nouns not caught by NER.
	for _, tok := range doc.Tokens {
		lemma := strings.ToLower(tok.Lemma)
		if seen[lemma] || len(lemma) <= 3 || tok.IsStop {
			continue
		}
		switch tok.POS {
		case analyzer.POSProperNoun:
			add(WeightedEntity{Surface: tok.Text, Lemma: lemma, Kind: KindProperNoun, Weight: defaultProperWeight})
		case analyzer.POSNoun:
			add(WeightedEntity{Surface: tok.Text, Lemma: lemma, Kind: KindNoun, Weight: defaultNounWeight})
		}
	}

	// Noun chunks for compound nouns.
	for _, chunk := range doc.Chunks {
		lemma := strings.ToLower(chunk.Text)
		if seen[lemma] || len(lemma) <= 4 {
			continue
		}
		weight := defaultNounWeight
		for _, tok := range doc.SpanTokens(chunk) {
			if tok.POS == analyzer.POSProperNoun {
				weight = defaultProperWeight
				break
			}
		}
		add(WeightedEntity{Surface: chunk.Text, Lemma: lemma, Kind: KindNounChunk, Weight: weight})
	}

	return a
}

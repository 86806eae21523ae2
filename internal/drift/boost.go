package drift

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/driftos/driftd/internal/nlp"
)

// Rule tags reported in Result.Rules, in the order the engine applies them.
const (
	RulePreferenceDetected = "preference_detected"
	RuleResponseParticle   = "response_particle"
	RuleUltraShortResponse = "ultra_short_response"
	RuleQAPair             = "qa_pair"
	RuleAnaphoricRef       = "anaphoric_ref"
	RuleAnaphoricRefWeak   = "anaphoric_ref_weak"
	RuleQuestion           = "question"
	RuleEntityOverlap      = "entity_overlap"
)

// Floor and multiplier constants of the boost pipeline. Values are part of
// the scoring contract; see the rule ordering notes on Engine.Score.
const (
	responseParticleFloor = 0.55
	ultraShortFloor       = 0.50
	anaphoricFloor        = 0.45

	qaPairMultiplier     = 1.3
	anaphoricMultiplier  = 1.5
	questionMultiplier   = 1.6
	overlapMaxMultiplier = 2.0

	// Word-count ceilings for the short-form rules.
	particleMaxWords   = 4
	ultraShortMaxWords = 2
	qaPairMaxWords     = 10

	// Anaphoric floor suppression thresholds: total new-entity weight, or
	// number of high-value new entities.
	suppressNewWeight    = 4.0
	suppressHighValueNew = 2
)

// Result is the outcome of one boost computation.
type Result struct {
	// Raw is the unmodified cosine between embedding and centroid.
	Raw float64

	// Boosted is the calibrated score after floors and multipliers,
	// clamped to [0, 1].
	Boosted float64

	// Multiplier is Boosted/Raw, or 1 when Raw is zero.
	Multiplier float64

	// Rules lists the rule tags that fired, in application order, without
	// duplicates.
	Rules []string

	// Current and Previous carry the full message analyses so downstream
	// routers get the structured evidence along with the score.
	Current  *nlp.MessageAnalysis
	Previous *nlp.MessageAnalysis

	// Overlap is the weighted entity overlap of current against previous.
	Overlap nlp.OverlapResult
}

// Engine composes embedding similarity with linguistic analysis.
type Engine struct {
	pipeline *nlp.Pipeline
}

// NewEngine creates a boost engine on top of an nlp pipeline.
func NewEngine(p *nlp.Pipeline) *Engine {
	return &Engine{pipeline: p}
}

// Score analyzes current and previous, computes the raw cosine of
// embedding against centroid, and applies the boost pipeline.
//
// Rule ordering: floors for trivially short answers come first so they are
// lifted above the drift threshold before any multiplier amplifies noise;
// the Q&A prior applies before anaphoric floors so short factual answers
// compound correctly; anaphora precedes the question multiplier so a
// follow-up question referring back gets both; entity overlap is last
// because it is proportional and scales whatever confidence the earlier
// rules established.
func (e *Engine) Score(ctx context.Context, current, previous string, embedding, centroid []float32) (*Result, error) {
	cur, err := e.pipeline.AnalyzeMessage(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("drift: analyze current: %w", err)
	}
	prev, err := e.pipeline.AnalyzeMessage(ctx, previous)
	if err != nil {
		return nil, fmt.Errorf("drift: analyze previous: %w", err)
	}

	res := &Result{
		Raw:      Cosine(embedding, centroid),
		Current:  cur,
		Previous: prev,
		Overlap:  nlp.Overlap(cur.AllEntities, prev.AllEntities),
	}

	// Short-circuit: the user is explicitly comparing or pivoting, so no
	// floors or multipliers apply.
	if cur.HasPreference {
		res.Boosted = clamp01(res.Raw)
		res.Multiplier = 1.0
		res.Rules = []string{RulePreferenceDetected}
		return res, nil
	}
	if cur.HasTopicPivot || nlp.HasTopicPivot(current) {
		res.Boosted = clamp01(res.Raw)
		res.Multiplier = 1.0
		return res, nil
	}

	boosted := res.Raw

	words := strings.Fields(current)
	for i, w := range words {
		words[i] = strings.Trim(strings.ToLower(w), ".,!?")
	}
	first := ""
	if len(words) > 0 {
		first = words[0]
	}

	if responseParticles[first] && len(words) <= particleMaxWords {
		boosted = math.Max(boosted, responseParticleFloor)
		res.Rules = append(res.Rules, RuleResponseParticle)
	} else if len(words) <= ultraShortMaxWords && !cur.IsQuestion {
		boosted = math.Max(boosted, ultraShortFloor)
		res.Rules = append(res.Rules, RuleUltraShortResponse)
	}

	if prev.IsQuestion && !cur.IsQuestion && len(words) <= qaPairMaxWords {
		boosted *= qaPairMultiplier
		res.Rules = append(res.Rules, RuleQAPair)
	}

	if cur.HasAnaphoricRef {
		if suppressAnaphoricFloor(cur, prev.AllEntities) {
			boosted *= anaphoricMultiplier
			res.Rules = append(res.Rules, RuleAnaphoricRefWeak)
		} else {
			boosted = math.Max(boosted, anaphoricFloor)
			boosted *= anaphoricMultiplier
			res.Rules = append(res.Rules, RuleAnaphoricRef)
		}
	}

	if cur.IsQuestion {
		boosted *= questionMultiplier
		res.Rules = append(res.Rules, RuleQuestion)
	}

	if res.Overlap.Score > 0 {
		boosted *= 1.0 + (overlapMaxMultiplier-1.0)*math.Min(res.Overlap.Score, 1.0)
		res.Rules = append(res.Rules, RuleEntityOverlap)
	}

	// A pure-multiplier path can push a negative cosine further down, so
	// the lower bound needs enforcing too.
	res.Boosted = clamp01(boosted)
	if res.Raw == 0 {
		res.Multiplier = 1.0
	} else {
		res.Multiplier = res.Boosted / res.Raw
	}
	return res, nil
}

// clamp01 bounds a score to the [0, 1] range reported to callers.
func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1.0)
}

// suppressAnaphoricFloor decides whether the anaphoric floor must not
// apply: the message is comparing or pivoting, or it introduces enough new
// entity weight (one PERSON plus one GPE, say) that the reference is
// likely a reaction on the way to a new topic.
func suppressAnaphoricFloor(cur *nlp.MessageAnalysis, previous *nlp.EntityAnalysis) bool {
	if cur.HasPreference || cur.HasTopicPivot || cur.PivotDetected {
		return true
	}

	prevSet := previous.LemmaSet()
	var newWeight float64
	highValueNew := 0
	for _, e := range cur.AllEntities.Entities {
		if prevSet[e.Lemma] {
			continue
		}
		newWeight += e.Weight
		if e.Weight >= 2.0 {
			highValueNew++
		}
	}

	return newWeight >= suppressNewWeight || highValueNew >= suppressHighValueNew
}

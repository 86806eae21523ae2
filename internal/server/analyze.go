package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/driftos/driftd/internal/nlp"
)

// handleEntityOverlap computes the loose set-cardinality overlap of two
// texts. Optimized for "did this reply reference a rare term from that
// message?" recall, not for weighted topic scoring.
func (s *Server) handleEntityOverlap(w http.ResponseWriter, r *http.Request) {
	var req entityOverlapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text1 == nil || req.Text2 == nil {
		writeError(w, http.StatusBadRequest, "text1 and text2 are required")
		return
	}

	start := time.Now()
	doc1, err := s.parser.Parse(r.Context(), *req.Text1)
	if err != nil {
		s.recordAnalyze(r.Context(), start, err)
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}
	doc2, err := s.parser.Parse(r.Context(), *req.Text2)
	s.recordAnalyze(r.Context(), start, err)
	if err != nil {
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}

	set1 := nlp.LooseEntitySet(doc1)
	set2 := nlp.LooseEntitySet(doc2)
	score, shared := nlp.LooseOverlap(set1, set2)

	writeJSON(w, http.StatusOK, entityOverlapResponse{
		HasOverlap:     score > 0,
		OverlapScore:   score,
		SharedEntities: shared,
		Text1Entities:  nlp.SortedTerms(set1),
		Text2Entities:  nlp.SortedTerms(set2),
	})
}

// handleAnalyzeMessage runs the full linguistic analysis of a current
// message against its predecessor.
func (s *Server) handleAnalyzeMessage(w http.ResponseWriter, r *http.Request) {
	var req analyzeMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Current == nil || req.Previous == nil {
		writeError(w, http.StatusBadRequest, "current and previous are required")
		return
	}

	cur, err := s.analyzeMessage(r.Context(), *req.Current)
	if err != nil {
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}
	prev, err := s.analyzeMessage(r.Context(), *req.Previous)
	if err != nil {
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}

	ov := nlp.Overlap(cur.AllEntities, prev.AllEntities)
	writeJSON(w, http.StatusOK, buildAnalysis(cur, prev, ov))
}

// handleAnalyzeDrift combines embedding similarity against a branch
// centroid with the full boost pipeline.
func (s *Server) handleAnalyzeDrift(w http.ResponseWriter, r *http.Request) {
	var req analyzeDriftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Current == nil || req.Previous == nil {
		writeError(w, http.StatusBadRequest, "current and previous are required")
		return
	}
	if len(req.CurrentEmbedding) == 0 || len(req.BranchCentroid) == 0 {
		writeError(w, http.StatusBadRequest, "current_embedding and branch_centroid are required")
		return
	}
	if len(req.CurrentEmbedding) != len(req.BranchCentroid) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"vector length mismatch: current_embedding has %d dimensions, branch_centroid has %d",
			len(req.CurrentEmbedding), len(req.BranchCentroid)))
		return
	}

	start := time.Now()
	res, err := s.engine.Score(r.Context(), *req.Current, *req.Previous, req.CurrentEmbedding, req.BranchCentroid)
	s.recordAnalyze(r.Context(), start, err)
	if err != nil {
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}

	rules := res.Rules
	if rules == nil {
		rules = []string{}
	}
	writeJSON(w, http.StatusOK, analyzeDriftResponse{
		RawSimilarity:     res.Raw,
		BoostedSimilarity: res.Boosted,
		BoostMultiplier:   res.Multiplier,
		BoostsApplied:     rules,
		Analysis:          buildAnalysis(res.Current, res.Previous, res.Overlap),
	})
}

// buildAnalysis shapes a message analysis pair into the wire form shared by
// /analyze-message and /analyze-drift. The weighted overlap score is
// clamped to [0, 1] at the edge.
func buildAnalysis(cur, prev *nlp.MessageAnalysis, ov nlp.OverlapResult) analyzeMessageResponse {
	score := ov.Score
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	shared := ov.Shared
	if shared == nil {
		shared = []string{}
	}

	return analyzeMessageResponse{
		CurrentIsQuestion:      cur.IsQuestion,
		PreviousIsQuestion:     prev.IsQuestion,
		CurrentHasAnaphoricRef: cur.HasAnaphoricRef,
		HasTopicReturnSignal:   cur.HasTopicPivot || cur.PivotDetected,
		HasPreference:          cur.HasPreference,
		PreferredEntity:        cur.PreferredPhrase,
		RejectedEntity:         cur.RejectedPhrase,
		EntityOverlap: entityOverlapInfo{
			HasOverlap:     score > 0,
			OverlapScore:   score,
			SharedEntities: shared,
		},
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/driftos/driftd/internal/drift"
	"github.com/driftos/driftd/internal/observe"
)

// similarityQuestionBoost mirrors the Q&A prior of the boost engine without
// involving it: a question followed by a statement gets its similarity
// lifted. Applied on the raw request texts, before preprocessing.
const similarityQuestionBoost = 1.3

// fail logs a compute failure with trace context and returns an opaque 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observe.Logger(r.Context()).Error(msg, "err", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, msg)
}

// handleHealth reports model status. 503 until the encoder has a loaded
// model with a known dimension.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.encoderReady() {
		writeError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Model:     s.enc.ModelID(),
		Device:    s.enc.Device(),
		Dimension: s.enc.Dimensions(),
	})
}

// handleEmbed generates embeddings for one or more texts, optionally
// preprocessing them first.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	if !s.encoderReady() {
		writeError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		return
	}

	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	texts := []string(req.Text)
	var preprocessed []string
	if req.Preprocess == nil || *req.Preprocess {
		var err error
		preprocessed, err = s.pipeline.PreprocessBatch(r.Context(), texts)
		if err != nil {
			s.fail(w, r, msgAnalyzerFailed, err)
			return
		}
		texts = preprocessed
	}

	vecs, err := s.embedBatch(r.Context(), texts)
	if err != nil {
		s.fail(w, r, msgEncoderFailed, err)
		return
	}

	writeJSON(w, http.StatusOK, embedResponse{
		Embeddings:        vecs,
		Dimension:         s.enc.Dimensions(),
		Model:             s.enc.ModelID(),
		PreprocessedTexts: preprocessed,
	})
}

// handlePreprocess runs the lemmatization pipeline without embedding. The
// encoder is not involved, so the endpoint works even before the model
// loads.
func (s *Server) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	var req preprocessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	texts := []string(req.Text)
	preprocessed, err := s.pipeline.PreprocessBatch(r.Context(), texts)
	if err != nil {
		s.fail(w, r, msgAnalyzerFailed, err)
		return
	}

	writeJSON(w, http.StatusOK, preprocessResponse{
		Original:     texts,
		Preprocessed: preprocessed,
	})
}

// handleSimilarity computes the cosine similarity of two texts, with the
// question-adjustment side effect on the raw inputs.
func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	if !s.encoderReady() {
		writeError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		return
	}

	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text1 == nil || req.Text2 == nil {
		writeError(w, http.StatusBadRequest, "text1 and text2 are required")
		return
	}

	text1, text2 := *req.Text1, *req.Text2
	resp := similarityResponse{}
	if req.Preprocess == nil || *req.Preprocess {
		pre, err := s.pipeline.PreprocessBatch(r.Context(), []string{text1, text2})
		if err != nil {
			s.fail(w, r, msgAnalyzerFailed, err)
			return
		}
		text1, text2 = pre[0], pre[1]
		resp.PreprocessedText1 = &pre[0]
		resp.PreprocessedText2 = &pre[1]
	}

	vecs, err := s.embedBatch(r.Context(), []string{text1, text2})
	if err != nil {
		s.fail(w, r, msgEncoderFailed, err)
		return
	}

	resp.Similarity = drift.Cosine(vecs[0], vecs[1])
	resp.AdjustedSimilarity = resp.Similarity
	if strings.Contains(*req.Text1, "?") && !strings.Contains(*req.Text2, "?") {
		resp.AdjustedSimilarity = resp.Similarity * similarityQuestionBoost
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleDrift checks whether a message has drifted from its anchor and
// maps the similarity onto a routing action.
func (s *Server) handleDrift(w http.ResponseWriter, r *http.Request) {
	if !s.encoderReady() {
		writeError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		return
	}

	var req driftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Anchor == nil || req.Message == nil {
		writeError(w, http.StatusBadRequest, "anchor and message are required")
		return
	}

	stay, branch := s.stayThreshold, s.branchThreshold
	if req.StayThreshold != nil {
		stay = *req.StayThreshold
	}
	if req.BranchThreshold != nil {
		branch = *req.BranchThreshold
	}

	anchor, message := *req.Anchor, *req.Message
	resp := driftResponse{}
	if req.Preprocess == nil || *req.Preprocess {
		pre, err := s.pipeline.PreprocessBatch(r.Context(), []string{anchor, message})
		if err != nil {
			s.fail(w, r, msgAnalyzerFailed, err)
			return
		}
		anchor, message = pre[0], pre[1]
		resp.PreprocessedAnchor = &pre[0]
		resp.PreprocessedMessage = &pre[1]
	}

	vecs, err := s.embedBatch(r.Context(), []string{anchor, message})
	if err != nil {
		s.fail(w, r, msgEncoderFailed, err)
		return
	}

	resp.Similarity = drift.Cosine(vecs[0], vecs[1])
	resp.Action = drift.Action(resp.Similarity, stay, branch)
	if s.metrics != nil {
		s.metrics.RecordDriftDecision(r.Context(), resp.Action)
	}

	writeJSON(w, http.StatusOK, resp)
}

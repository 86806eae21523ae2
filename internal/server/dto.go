package server

import (
	"encoding/json"
	"errors"
)

// TextOrList accepts a JSON string or array of strings and normalizes both
// to a slice. The union exists only at the HTTP edge; everything behind the
// handlers works on []string.
type TextOrList []string

// UnmarshalJSON decodes either "foo" or ["foo", "bar"].
func (t *TextOrList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TextOrList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("text must be a string or an array of strings")
	}
	*t = TextOrList(list)
	return nil
}

type embedRequest struct {
	Text TextOrList `json:"text"`

	// Preprocess defaults to true; preprocessing improves drift detection.
	Preprocess *bool `json:"preprocess"`
}

type embedResponse struct {
	Embeddings        [][]float32 `json:"embeddings"`
	Dimension         int         `json:"dimension"`
	Model             string      `json:"model"`
	PreprocessedTexts []string    `json:"preprocessed_texts"`
}

type preprocessRequest struct {
	Text TextOrList `json:"text"`
}

type preprocessResponse struct {
	Original     []string `json:"original"`
	Preprocessed []string `json:"preprocessed"`
}

type similarityRequest struct {
	Text1      *string `json:"text1"`
	Text2      *string `json:"text2"`
	Preprocess *bool   `json:"preprocess"`
}

type similarityResponse struct {
	Similarity         float64 `json:"similarity"`
	AdjustedSimilarity float64 `json:"adjusted_similarity"`
	PreprocessedText1  *string `json:"preprocessed_text1"`
	PreprocessedText2  *string `json:"preprocessed_text2"`
}

type driftRequest struct {
	Anchor          *string  `json:"anchor"`
	Message         *string  `json:"message"`
	Preprocess      *bool    `json:"preprocess"`
	StayThreshold   *float64 `json:"stay_threshold"`
	BranchThreshold *float64 `json:"branch_threshold"`
}

type driftResponse struct {
	Similarity          float64 `json:"similarity"`
	Action              string  `json:"action"`
	PreprocessedAnchor  *string `json:"preprocessed_anchor"`
	PreprocessedMessage *string `json:"preprocessed_message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	Device    string `json:"device"`
	Dimension int    `json:"dimension"`
}

type entityOverlapRequest struct {
	Text1 *string `json:"text1"`
	Text2 *string `json:"text2"`
}

type entityOverlapResponse struct {
	HasOverlap     bool     `json:"has_overlap"`
	OverlapScore   float64  `json:"overlap_score"`
	SharedEntities []string `json:"shared_entities"`
	Text1Entities  []string `json:"text1_entities"`
	Text2Entities  []string `json:"text2_entities"`
}

type analyzeMessageRequest struct {
	Current  *string `json:"current"`
	Previous *string `json:"previous"`
}

// entityOverlapInfo is the nested overlap block of analyzeMessageResponse.
// OverlapScore is the weighted form clamped to [0, 1].
type entityOverlapInfo struct {
	HasOverlap     bool     `json:"has_overlap"`
	OverlapScore   float64  `json:"overlap_score"`
	SharedEntities []string `json:"shared_entities"`
}

type analyzeMessageResponse struct {
	CurrentIsQuestion      bool              `json:"current_is_question"`
	PreviousIsQuestion     bool              `json:"previous_is_question"`
	CurrentHasAnaphoricRef bool              `json:"current_has_anaphoric_ref"`
	HasTopicReturnSignal   bool              `json:"has_topic_return_signal"`
	HasPreference          bool              `json:"has_preference"`
	PreferredEntity        string            `json:"preferred_entity,omitempty"`
	RejectedEntity         string            `json:"rejected_entity,omitempty"`
	EntityOverlap          entityOverlapInfo `json:"entity_overlap"`
}

type analyzeDriftRequest struct {
	Current          *string   `json:"current"`
	Previous         *string   `json:"previous"`
	CurrentEmbedding []float32 `json:"current_embedding"`
	BranchCentroid   []float32 `json:"branch_centroid"`
}

type analyzeDriftResponse struct {
	RawSimilarity     float64                `json:"raw_similarity"`
	BoostedSimilarity float64                `json:"boosted_similarity"`
	BoostMultiplier   float64                `json:"boost_multiplier"`
	BoostsApplied     []string               `json:"boosts_applied"`
	Analysis          analyzeMessageResponse `json:"analysis"`
}

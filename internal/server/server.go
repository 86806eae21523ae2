// Package server implements the driftd HTTP surface: embedding, similarity,
// drift routing, preprocessing, and linguistic analysis endpoints, all
// stateless JSON over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/driftos/driftd/internal/drift"
	"github.com/driftos/driftd/internal/nlp"
	"github.com/driftos/driftd/internal/observe"
	"github.com/driftos/driftd/pkg/provider/analyzer"
	"github.com/driftos/driftd/pkg/provider/encoder"
)

// Server holds the request-scoped dependencies of the HTTP surface. Every
// handler is a pure function of its inputs and the two loaded providers;
// the server itself carries no mutable state.
type Server struct {
	enc      encoder.Provider
	parser   analyzer.Provider
	pipeline *nlp.Pipeline
	engine   *drift.Engine
	metrics  *observe.Metrics

	stayThreshold   float64
	branchThreshold float64
}

// Config wires the server's dependencies.
type Config struct {
	Encoder  encoder.Provider
	Analyzer analyzer.Provider

	// Metrics is optional; nil disables instrument recording.
	Metrics *observe.Metrics

	// Default routing thresholds; requests may override per call. Zero
	// values select the benchmark defaults.
	StayThreshold   float64
	BranchThreshold float64
}

// New creates a Server from cfg. The nlp pipeline and boost engine are
// built on the configured analyzer.
func New(cfg Config) *Server {
	stay := cfg.StayThreshold
	if stay == 0 {
		stay = drift.DefaultStayThreshold
	}
	branch := cfg.BranchThreshold
	if branch == 0 {
		branch = drift.DefaultBranchThreshold
	}

	pipeline := nlp.NewPipeline(cfg.Analyzer)
	return &Server{
		enc:             cfg.Encoder,
		parser:          cfg.Analyzer,
		pipeline:        pipeline,
		engine:          drift.NewEngine(pipeline),
		metrics:         cfg.Metrics,
		stayThreshold:   stay,
		branchThreshold: branch,
	}
}

// Register adds all driftd endpoints to mux:
//
//	GET  /health
//	POST /embed
//	POST /preprocess
//	POST /similarity
//	POST /drift
//	POST /entity-overlap
//	POST /analyze-message
//	POST /analyze-drift
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /embed", s.handleEmbed)
	mux.HandleFunc("POST /preprocess", s.handlePreprocess)
	mux.HandleFunc("POST /similarity", s.handleSimilarity)
	mux.HandleFunc("POST /drift", s.handleDrift)
	mux.HandleFunc("POST /entity-overlap", s.handleEntityOverlap)
	mux.HandleFunc("POST /analyze-message", s.handleAnalyzeMessage)
	mux.HandleFunc("POST /analyze-drift", s.handleAnalyzeDrift)
}

// encoderReady reports whether the embedding model is loaded. Dimensions
// returns 0 until the backing model has answered a probe.
func (s *Server) encoderReady() bool {
	return s.enc != nil && s.enc.Dimensions() > 0
}

// embedBatch calls the encoder with instrument recording around it.
func (s *Server) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := s.enc.EmbedBatch(ctx, texts)
	if s.metrics != nil {
		s.metrics.EncodeDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			s.metrics.RecordProviderRequest(ctx, "encoder", "error")
			s.metrics.RecordProviderError(ctx, "encoder")
		} else {
			s.metrics.RecordProviderRequest(ctx, "encoder", "ok")
		}
	}
	return vecs, err
}

// analyzeMessage runs the full linguistic analysis with instrument
// recording around it.
func (s *Server) analyzeMessage(ctx context.Context, text string) (*nlp.MessageAnalysis, error) {
	start := time.Now()
	ma, err := s.pipeline.AnalyzeMessage(ctx, text)
	s.recordAnalyze(ctx, start, err)
	return ma, err
}

func (s *Server) recordAnalyze(ctx context.Context, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalyzeDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderRequest(ctx, "analyzer", "error")
		s.metrics.RecordProviderError(ctx, "analyzer")
	} else {
		s.metrics.RecordProviderRequest(ctx, "analyzer", "ok")
	}
}

package health

import (
	"context"
	"fmt"

	"github.com/driftos/driftd/pkg/provider/analyzer"
	"github.com/driftos/driftd/pkg/provider/encoder"
)

// EncoderChecker probes the sentence encoder. The encoder reports its vector
// dimensionality once the backing model is loaded, so a zero dimension means
// the model is still warming up or the backend is unreachable.
func EncoderChecker(enc encoder.Provider) Checker {
	return Checker{
		Name: "encoder",
		Check: func(_ context.Context) error {
			if enc == nil {
				return fmt.Errorf("encoder not configured")
			}
			if enc.Dimensions() == 0 {
				return fmt.Errorf("model %q not loaded", enc.ModelID())
			}
			return nil
		},
	}
}

// AnalyzerChecker probes the linguistic-analysis sidecar with a trivial
// parse request.
func AnalyzerChecker(nlp analyzer.Provider) Checker {
	return Checker{
		Name: "analyzer",
		Check: func(ctx context.Context) error {
			if nlp == nil {
				return fmt.Errorf("analyzer not configured")
			}
			if _, err := nlp.Parse(ctx, "ok"); err != nil {
				return fmt.Errorf("parse probe: %w", err)
			}
			return nil
		},
	}
}

package health

import (
	"context"
	"errors"
	"testing"

	analyzermock "github.com/driftos/driftd/pkg/provider/analyzer/mock"
	encodermock "github.com/driftos/driftd/pkg/provider/encoder/mock"
)

func TestEncoderChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dims    int
		wantErr bool
	}{
		{"model loaded", 384, false},
		{"model not loaded", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			enc := &encodermock.Provider{
				DimensionsValue: tc.dims,
				ModelIDValue:    "all-minilm",
			}
			c := EncoderChecker(enc)
			err := c.Check(context.Background())
			if (err != nil) != tc.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestEncoderChecker_NilProvider(t *testing.T) {
	t.Parallel()
	c := EncoderChecker(nil)
	if err := c.Check(context.Background()); err == nil {
		t.Error("Check() = nil, want error for nil encoder")
	}
}

func TestAnalyzerChecker(t *testing.T) {
	t.Parallel()

	t.Run("reachable", func(t *testing.T) {
		t.Parallel()
		c := AnalyzerChecker(&analyzermock.Provider{})
		if err := c.Check(context.Background()); err != nil {
			t.Errorf("Check() = %v, want nil", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		c := AnalyzerChecker(&analyzermock.Provider{
			ParseErr: errors.New("connection refused"),
		})
		if err := c.Check(context.Background()); err == nil {
			t.Error("Check() = nil, want error")
		}
	})
}

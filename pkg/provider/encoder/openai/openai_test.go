package openai

import "testing"

func TestModelDimensions(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := modelDimensions(tt.model); got != tt.want {
				t.Errorf("modelDimensions(%q) = %d, want %d", tt.model, got, tt.want)
			}
		})
	}
}

// Unknown models still get a positive dimension so the readiness gate opens.
func TestModelDimensions_Unknown(t *testing.T) {
	if d := modelDimensions("some-future-model"); d <= 0 {
		t.Errorf("modelDimensions(unknown) = %d, want positive", d)
	}
}

func TestDimensions_MatchesHelper(t *testing.T) {
	for _, model := range []string{
		"text-embedding-3-small",
		"text-embedding-3-large",
		"text-embedding-ada-002",
	} {
		p := &Provider{model: model}
		if got := p.Dimensions(); got != modelDimensions(model) {
			t.Errorf("%s: Dimensions() = %d, want %d", model, got, modelDimensions(model))
		}
	}
}

func TestModelID(t *testing.T) {
	p := &Provider{model: "my-custom-embeddings-model"}
	if got := p.ModelID(); got != "my-custom-embeddings-model" {
		t.Errorf("ModelID() = %q", got)
	}
}

func TestDevice(t *testing.T) {
	p := &Provider{}
	if got := p.Device(); got != "cpu" {
		t.Errorf("Device() = %q, want cpu", got)
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.ModelID() != DefaultModel {
		t.Errorf("model = %s, want default %s", p.ModelID(), DefaultModel)
	}
}

func TestNew_MissingAPIKey(t *testing.T) {
	if _, err := New("", "text-embedding-3-small"); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestNew_Options(t *testing.T) {
	_, err := New("sk-test", "text-embedding-3-small",
		WithBaseURL("https://custom.example.com"),
		WithOrganization("org-123"),
	)
	if err != nil {
		t.Fatalf("New with options: %v", err)
	}
}

func TestFloat64ToFloat32(t *testing.T) {
	in := []float64{1.0, 2.5, -0.5}
	out := float64ToFloat32(in)
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != float32(in[i]) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], float32(in[i]))
		}
	}
}

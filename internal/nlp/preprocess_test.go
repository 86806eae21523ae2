package nlp

import (
	"context"
	"testing"

	"github.com/driftos/driftd/pkg/provider/analyzer/mock"
)

// The mock's naive fallback tokenizes on whitespace with lemma == lowered
// surface, which is exactly what preprocessing sees for already-lemmatized
// inputs.
func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "question scaffolding stripped",
			in:   "Can you tell me about quantum computing?",
			want: "about quantum computing",
		},
		{
			name: "punctuation and stopwords stripped",
			in:   "What's the weather like in Paris?",
			want: "weather paris",
		},
		{
			name: "topic words survive",
			in:   "granite countertops installation",
			want: "granite countertops installation",
		},
		{
			name: "fallback when everything is filler",
			in:   "Thanks!",
			want: "thanks",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := NewPipeline(&mock.Provider{})
			got, err := p.Preprocess(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("Preprocess(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPreprocess_EmptyInputSkipsAnalyzer(t *testing.T) {
	t.Parallel()

	m := &mock.Provider{}
	p := NewPipeline(m)

	for _, in := range []string{"", "   ", "\n\t"} {
		got, err := p.Preprocess(context.Background(), in)
		if err != nil {
			t.Fatalf("Preprocess(%q): %v", in, err)
		}
		if got != "" {
			t.Errorf("Preprocess(%q) = %q, want empty", in, got)
		}
	}
	if len(m.ParseCalls) != 0 {
		t.Errorf("analyzer called %d times for empty inputs, want 0", len(m.ParseCalls))
	}
}

func TestPreprocessBatch_PreservesLengthAndOrder(t *testing.T) {
	t.Parallel()

	p := NewPipeline(&mock.Provider{})
	in := []string{"", "granite countertops installation", "   ", "weather paris today"}

	got, err := p.PreprocessBatch(context.Background(), in)
	if err != nil {
		t.Fatalf("PreprocessBatch: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	want := []string{"", "granite countertops installation", "", "weather paris today"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPreprocessBatch_Empty(t *testing.T) {
	t.Parallel()

	p := NewPipeline(&mock.Provider{})
	got, err := p.PreprocessBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("PreprocessBatch(nil): %v", err)
	}
	if got != nil {
		t.Errorf("PreprocessBatch(nil) = %v, want nil", got)
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  multiple   spaces  ", "multiple spaces"},
		{"it's a test-case", "it s a test case"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := clean(tc.in); got != tc.want {
			t.Errorf("clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

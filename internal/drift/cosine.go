// Package drift turns raw embedding similarity into a calibrated routing
// score. It composes the cosine between the current message vector and a
// branch centroid with linguistic features from the nlp package and a set
// of short-form rules, producing the boosted score plus an auditable list
// of the rules that fired.
package drift

import "math"

// Cosine returns the cosine similarity of a and b, accumulating in
// float64. Returns 0 when either vector has zero norm or the lengths
// differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

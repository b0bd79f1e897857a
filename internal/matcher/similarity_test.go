package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Vendor X", "Vendor X", 1},
		{"case insensitive", "VENDOR x", "vendor X", 1},
		{"containment counts as full match", "Vendor X", "Vendor X Inc", 1},
		{"containment reversed", "Vendor X Inc", "Vendor X", 1},
		{"empty left", "", "Vendor X", 0},
		{"empty right", "Vendor X", "", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescriptionSimilarity(tt.a, tt.b))
		})
	}
}

func TestDescriptionSimilarityPartial(t *testing.T) {
	// One substitution over eight runes.
	got := DescriptionSimilarity("Vendor X", "Vendor Y")
	assert.InDelta(t, 0.875, got, 0.001)

	// Unrelated strings stay well below the mismatch threshold.
	got = DescriptionSimilarity("ACME supplies", "payroll run 7")
	assert.Less(t, got, 0.5)
}

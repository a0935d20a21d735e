package fees

import (
	"strings"
	"testing"

	"github.com/propchain-labs/bridge-coordinator/pkg/asset"
)

func TestEstimator_Estimate(t *testing.T) {
	e := NewEstimator(500_000)

	cases := []struct {
		name        string
		description string
		want        uint64
	}{
		{"empty metadata", "", 500_000},
		{"short description", "Lot 12, Block 4", 501_500},
		{"long description", strings.Repeat("x", 1000), 600_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Estimate(asset.Metadata{LegalDescription: tc.description})
			if got != tc.want {
				t.Errorf("Estimate = %d, want %d", got, tc.want)
			}
		})
	}
}

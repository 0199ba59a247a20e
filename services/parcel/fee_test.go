package parcel

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateParcelFee(t *testing.T) {
	tests := []struct {
		name       string
		weight     float64
		parcelType string
		want       float64
	}{
		{"fragile", 1, "fragile", 90},
		{"express", 5, "express", 200},
		{"document", 2, "document", 56},
		{"unknown type falls back to default multiplier", 3, "unknown", 80},
		{"type is case insensitive", 1, "FRAGILE", 90},
		{"type is trimmed", 1, " express ", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateParcelFee(tt.weight, tt.parcelType))
		})
	}
}

func TestGenerateTrackingID(t *testing.T) {
	at := time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)

	id, err := generateTrackingID(at)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "TRK-20260830-"), "unexpected prefix: %s", id)
	assert.Len(t, id, len("TRK-20260830-")+trackingSuffixLength)

	suffix := strings.TrimPrefix(id, "TRK-20260830-")
	assert.Equal(t, strings.ToUpper(suffix), suffix, "suffix must be uppercase")
}

func TestGenerateTrackingIDVaries(t *testing.T) {
	at := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := generateTrackingID(at)
		require.NoError(t, err)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "tracking ids should not repeat deterministically")
}

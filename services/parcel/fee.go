package parcel

import (
	"math"
	"strings"
)

const (
	baseFee       = 50.0
	perWeightRate = 10.0
)

// calculateParcelFee computes the delivery fee from weight and the normalized
// parcel type: round((baseFee + weight*rate) * multiplier).
func calculateParcelFee(weight float64, parcelType string) float64 {
	weightFee := weight * perWeightRate

	var typeMultiplier float64
	switch strings.ToLower(strings.TrimSpace(parcelType)) {
	case "fragile":
		typeMultiplier = 1.5
	case "express":
		typeMultiplier = 2.0
	case "document":
		typeMultiplier = 0.8
	default:
		typeMultiplier = 1.0
	}

	return math.Round((baseFee + weightFee) * typeMultiplier)
}

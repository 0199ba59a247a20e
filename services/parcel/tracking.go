package parcel

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const trackingSuffixLength = 6

const trackingAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateTrackingID builds a human-readable public identifier of the form
// TRK-YYYYMMDD-XXXXXX. Uniqueness is ultimately guarded by the database's
// unique index; the caller retries once on collision.
func generateTrackingID(at time.Time) (string, error) {
	var sb strings.Builder
	for i := 0; i < trackingSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(trackingAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate tracking suffix: %w", err)
		}
		sb.WriteByte(trackingAlphabet[n.Int64()])
	}
	return fmt.Sprintf("TRK-%s-%s", at.Format("20060102"), sb.String()), nil
}

package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs an unbiased Fisher-Yates shuffle of the slice in place.
// Randomness comes from crypto/rand, so results are never seeded or
// reproducible across invocations.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

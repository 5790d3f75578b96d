package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint derives the cache key digest for a feature vector. The
// vector is serialized in input order (position carries meaning) into a
// canonical whitespace-free form before hashing, so equal vectors always
// collide and unequal vectors practically never do.
func Fingerprint(features []float64) string {
	payload, _ := json.Marshal(features)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

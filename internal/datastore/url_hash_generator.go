package datastore

import (
	"crypto/sha256"
	"encoding/hex"
)

// FullHashLength is the length of a hex-encoded SHA-256 digest.
const FullHashLength = 64

// URLHashGenerator derives stable ledger keys from URLs
type URLHashGenerator struct {
	hashLength int
}

// NewURLHashGenerator creates a new URL hash generator. Lengths outside 1..64 use the full digest.
func NewURLHashGenerator(hashLength int) *URLHashGenerator {
	if hashLength <= 0 || hashLength > FullHashLength {
		hashLength = FullHashLength
	}
	return &URLHashGenerator{
		hashLength: hashLength,
	}
}

// GenerateHash creates a unique hash for the URL
func (uhg *URLHashGenerator) GenerateHash(url string) string {
	hasher := sha256.New()
	hasher.Write([]byte(url))
	return hex.EncodeToString(hasher.Sum(nil))[:uhg.hashLength]
}

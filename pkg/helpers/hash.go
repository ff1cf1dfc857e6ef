package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// PostHash fingerprints a post as sha256(content + imageRef + unix millis), hex encoded.
// The same digest, decoded, is what gets logged on chain.
func PostHash(content, imageRef string, timestampMillis int64) string {
	sum := sha256.Sum256([]byte(content + imageRef + strconv.FormatInt(timestampMillis, 10)))
	return hex.EncodeToString(sum[:])
}

// HashBytes decodes a PostHash result; malformed input yields nil.
func HashBytes(hash string) []byte {
	b, err := hex.DecodeString(hash)
	if err != nil {
		return nil
	}
	return b
}

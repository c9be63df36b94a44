package cache

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/xxh3"
)

// Hash returns the 128-bit xxh3 digest of data as 32 hex characters.
func Hash(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// hashKey derives "prefix:<hash>" from the JSON encoding of parts. Key
// option structs contain only plain fields, so encoding cannot fail.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/lacuna/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix      = "embrec"
	embeddingModelPrefix = "embmod"
)

// makeEmbeddingKey generates a key for a cached embedding by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeModelIndexKey generates a composite key for the per-model index.
// Format: prefix:model:id
func makeModelIndexKey(model string, id core.ID) []byte {
	prefix := embeddingModelPrefix + ":" + model + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeModelIndexPrefix generates the iteration prefix for one model's
// index entries.
func makeModelIndexPrefix(model string) []byte {
	return []byte(embeddingModelPrefix + ":" + model + ":")
}

package badger

import (
	"fmt"

	"github.com/poiesic/grimoire/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chkrec"
	chunkSourcePrefix  = "chksrc"
	patternRecordPrefix = "patrec"
	patternSystemPrefix = "patsys"
)

// makeChunkKey generates a key for a content chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:source:id
func makeChunkSourceKey(source string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s\x00%d", chunkSourcePrefix, source, id))
}

// makeChunkSourceScanPrefix generates the scan prefix for all chunks
// belonging to one source.
func makeChunkSourceScanPrefix(source string) []byte {
	return []byte(fmt.Sprintf("%s:%s\x00", chunkSourcePrefix, source))
}

// makePatternKey generates a key for a pattern entry by ID.
func makePatternKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", patternRecordPrefix, id))
}

// makePatternSystemKey generates a composite key for the system index.
// Format: prefix:system:id
func makePatternSystemKey(system string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s\x00%d", patternSystemPrefix, system, id))
}

// makePatternSystemScanPrefix generates the scan prefix for all patterns
// belonging to one game system.
func makePatternSystemScanPrefix(system string) []byte {
	return []byte(fmt.Sprintf("%s:%s\x00", patternSystemPrefix, system))
}

package badger

import "fmt"

// Key prefixes for different data types
const (
	pointPrefix      = "pt"
	collectionPrefix = "col"
)

// makePointKey generates a key for a point by ID.
func makePointKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", pointPrefix, id))
}

// pointKeyID recovers the point ID from its key.
func pointKeyID(key []byte) string {
	return string(key[len(pointPrefix)+1:])
}

// makeCollectionKey generates the key holding collection metadata.
func makeCollectionKey() []byte {
	return []byte(fmt.Sprintf("%s:meta", collectionPrefix))
}

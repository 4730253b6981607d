package badger

import "fmt"

// Key prefixes for stored record types
const (
	documentRecordPrefix = "docrec"
)

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentRecordPrefix, id))
}

// documentKeyPrefix returns the iteration prefix for document records.
func documentKeyPrefix() []byte {
	return []byte(documentRecordPrefix + ":")
}

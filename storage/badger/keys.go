package badger

// Key prefix for stored blobs. Reserving a prefix leaves room for
// bookkeeping keys that never show up in Keys.
const blobPrefix = "blob:"

// makeBlobKey generates the database key for a storage key.
func makeBlobKey(key string) []byte {
	return []byte(blobPrefix + key)
}

// parseBlobKey recovers the storage key from a database key.
func parseBlobKey(dbKey []byte) string {
	return string(dbKey[len(blobPrefix):])
}

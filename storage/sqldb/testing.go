package sqldb

// NewMemoryBackend creates a Backend over a private in-memory SQLite
// database. Caller must close the backend when done.
func NewMemoryBackend() (*Backend, error) {
	return Open(DialectSQLite, MemoryDSN)
}

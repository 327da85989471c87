package repository

// StoreOption applies a configuration option to the MemStore.
type StoreOption func(*MemStore)

// WithMaxEntries bounds the number of conversations kept in memory.
// When full, the oldest conversation is evicted. maxEntries <= 0 disables
// eviction.
func WithMaxEntries(maxEntries int) StoreOption {
	return func(s *MemStore) {
		s.maxEntries = maxEntries
	}
}

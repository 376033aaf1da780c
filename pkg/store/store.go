// Package store provides the key-value persistence contract behind gw's
// tour progress, tour settings, and theme preference.
//
// Everything durable goes through the small string-to-string Store
// interface so the engine can be tested against Memory and so the
// backend can be swapped (single JSON file for the common case, SQLite
// when several processes write concurrently).
//
// Key layout (stable across releases; changing these loses users'
// in-progress tours and theme choice):
//
//	tour/<id>  serialized tour progress record
//	settings   serialized tour settings
//	theme      explicit theme preference ("light" or "dark")
package store

// Key prefixes and fixed keys. See the package comment for the layout.
// Settings live outside the tour/ prefix so ResetAll on tour progress
// can clear by prefix without touching them.
const (
	TourKeyPrefix = "tour/"
	SettingsKey   = "settings"
	ThemeKey      = "theme"
)

// TourKey returns the storage key for a tour's progress record.
func TourKey(tourID string) string {
	return TourKeyPrefix + tourID
}

// Store is a durable string-to-string key-value store.
//
// Implementations are safe for concurrent use within one process.
// Across processes the discipline is last write wins; there is no merge
// logic. Callers that need read-side refresh watch the backing file via
// pkg/watcher.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes key=value, overwriting any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns all keys with the given prefix, in unspecified order.
	Keys(prefix string) ([]string, error)
	// Close releases any underlying resources.
	Close() error
}

package services

// Fixed keys of the durable store.
const (
	StorageKeyUser    = "ecoImpactUser"
	StorageKeyHistory = "ecoImpactFootprintHistory"
)

// Storage is the durable key-value boundary. Values are whole serialized
// objects; there is no partial update.
type Storage interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

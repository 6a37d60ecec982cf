package cart

// Repo persists whole carts under a key. Load returns errors.ErrNotFound when
// nothing was saved under key.
type Repo interface {
	Load(key string) ([]Item, error)
	Save(key string, items []Item) error
}

const keyPrefix = "cart_"

// Key is the storage key for userID's cart.
func Key(userID string) string {
	return keyPrefix + userID
}

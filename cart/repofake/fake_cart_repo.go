package cartrepofake

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/etokisana-client/cart"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
)

var _ cart.Repo = (*FakeCartRepo)(nil)

// FakeCartRepo keeps carts in memory, serialised as the real stores do so
// callers cannot share slices with it.
type FakeCartRepo struct {
	carts map[string][]byte // key to JSON items
	lock  sync.RWMutex

	SaveErr error // returned by Save when set
	saves   int
}

func NewFakeCartRepo() *FakeCartRepo {
	return &FakeCartRepo{
		carts: make(map[string][]byte),
	}
}

func (r *FakeCartRepo) Load(key string) ([]cart.Item, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	data, ok := r.carts[key]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FakeCartRepo) Save(key string, items []cart.Item) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	r.carts[key] = data
	r.saves++
	return nil
}

// Saves returns how many successful saves were made.
func (r *FakeCartRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}

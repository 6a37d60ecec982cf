package cart

import (
	"slices"
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// UserSource reports the authenticated user whenever it changes, with "" once
// nobody is authenticated.
type UserSource interface {
	OnUserChanged(fn func(userID string))
}

// Cart is the shopping cart of the bound user. Without a bound user it lives
// in memory only.
type Cart struct {
	repo Repo

	mu    sync.Mutex
	key   string
	items []Item
}

func New(repo Repo) *Cart {
	return &Cart{repo: repo}
}

// Attach binds the cart to every user src reports and unbinds it when the
// session becomes anonymous.
func (c *Cart) Attach(src UserSource) {
	src.OnUserChanged(func(userID string) {
		if userID == "" {
			c.Unbind()
			return
		}
		if err := c.Bind(userID); err != nil {
			log.Err(err).Str("user_id", userID).Msg("Failed to load cart")
		}
	})
}

// Bind loads userID's saved cart, replacing the current lines. Later
// mutations are saved under the same key.
func (c *Cart) Bind(userID string) error {
	if userID == "" {
		return clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "Cart.Bind empty user id")
	}
	key := Key(userID)

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.repo.Load(key)
	if err != nil && !clienterrors.Is(err, clienterrors.ErrNotFound) {
		return clienterrors.Wrapf(err, "Cart.Bind %s", key)
	}
	c.key = key
	c.items = sanitize(items)
	return nil
}

// Unbind stops saving. The lines stay in memory and the stored cart of the
// previous user is left untouched.
func (c *Cart) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
}

// UserKey returns the storage key of the bound user, or "" when unbound.
func (c *Cart) UserKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// AddItem puts one more of p in the cart. A line already at p.Stock is left
// alone and OutcomeAtStock returned.
func (c *Cart) AddItem(p Product) (Outcome, error) {
	if p.ID == "" {
		return OutcomeNotFound, clienterrors.Wrapf(clienterrors.ErrInvalidArgument, "Cart.AddItem empty product id")
	}
	return c.mutate(func(items []Item) ([]Item, Outcome) {
		i := indexOf(items, p.ID)
		if p.Stock < 1 {
			return items, OutcomeOutOfStock
		}
		if i < 0 {
			return append(items, Item{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Stock:    p.Stock,
				Image:    p.Image,
				Quantity: 1,
			}), OutcomeAdded
		}
		if items[i].Quantity >= p.Stock {
			return items, OutcomeAtStock
		}
		items[i].Stock = p.Stock
		items[i].Quantity++
		return items, OutcomeIncremented
	})
}

// RemoveItem deletes the line for productID.
func (c *Cart) RemoveItem(productID string) (Outcome, error) {
	return c.mutate(func(items []Item) ([]Item, Outcome) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, OutcomeNotFound
		}
		return slices.Delete(items, i, i+1), OutcomeRemoved
	})
}

// UpdateQuantity sets the quantity of productID's line, capped at its stock.
// A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) (Outcome, error) {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}
	return c.mutate(func(items []Item) ([]Item, Outcome) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, OutcomeNotFound
		}
		if quantity > items[i].Stock {
			items[i].Quantity = items[i].Stock
			return items, OutcomeClamped
		}
		items[i].Quantity = quantity
		return items, OutcomeUpdated
	})
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	_, err := c.mutate(func(items []Item) ([]Item, Outcome) {
		return nil, OutcomeCleared
	})
	return err
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity over all lines.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// mutate applies fn to a copy of the lines and, when the outcome changed the
// cart, saves the copy before making it current. A failed save leaves the
// cart as it was.
func (c *Cart) mutate(fn func([]Item) ([]Item, Outcome)) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, outcome := fn(slices.Clone(c.items))
	if !outcome.Changed() {
		return outcome, nil
	}
	if c.key != "" {
		if err := c.repo.Save(c.key, items); err != nil {
			return outcome, clienterrors.Wrapf(err, "Cart save %s", c.key)
		}
	}
	c.items = items
	return outcome, nil
}

func indexOf(items []Item, productID string) int {
	return slices.IndexFunc(items, func(item Item) bool { return item.ID == productID })
}

// sanitize drops lines that break the quantity bounds, which a hand edited or
// stale store could contain.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Stock < 1 || item.Quantity < 1 {
			continue
		}
		if item.Quantity > item.Stock {
			item.Quantity = item.Stock
		}
		out = append(out, item)
	}
	return out
}

package cart_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jrsteele09/etokisana-client/cart"
	cartrepofake "github.com/jrsteele09/etokisana-client/cart/repofake"
	"github.com/stretchr/testify/require"
)

var (
	riz   = cart.Product{ID: "p-1", Name: "Riz makalioka 5kg", Price: 1000, Stock: 3}
	huile = cart.Product{ID: "p-2", Name: "Huile 1L", Price: 500, Stock: 10}
	sucre = cart.Product{ID: "p-3", Name: "Sucre 1kg", Price: 250, Stock: 0}
)

func mustAdd(t *testing.T, c *cart.Cart, p cart.Product, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := c.AddItem(p)
		require.NoError(t, err)
	}
}

func TestCart_AddItem(t *testing.T) {
	c := cart.New(cartrepofake.NewFakeCartRepo())

	outcome, err := c.AddItem(riz)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeAdded, outcome)

	outcome, err = c.AddItem(riz)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeIncremented, outcome)

	mustAdd(t, c, riz, 1)
	outcome, err = c.AddItem(riz)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeAtStock, outcome)
	require.Equal(t, 3, c.Items()[0].Quantity)

	outcome, err = c.AddItem(sucre)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeOutOfStock, outcome)
	require.Len(t, c.Items(), 1)

	_, err = c.AddItem(cart.Product{Stock: 1})
	require.Error(t, err)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := cart.New(cartrepofake.NewFakeCartRepo())
	mustAdd(t, c, riz, 1)
	mustAdd(t, c, huile, 1)

	outcome, err := c.UpdateQuantity(huile.ID, 4)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeUpdated, outcome)

	outcome, err = c.UpdateQuantity(riz.ID, 99)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeClamped, outcome)
	require.Equal(t, 3, c.Items()[0].Quantity)

	outcome, err = c.UpdateQuantity("p-404", 2)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeNotFound, outcome)

	outcome, err = c.UpdateQuantity(riz.ID, 0)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeRemoved, outcome)
	require.Len(t, c.Items(), 1)
	require.Equal(t, huile.ID, c.Items()[0].ID)
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := cart.New(cartrepofake.NewFakeCartRepo())
	mustAdd(t, c, riz, 1)
	mustAdd(t, c, huile, 1)

	outcome, err := c.RemoveItem("p-404")
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeNotFound, outcome)

	outcome, err = c.RemoveItem(riz.ID)
	require.NoError(t, err)
	require.Equal(t, cart.OutcomeRemoved, outcome)

	require.NoError(t, c.Clear())
	require.Empty(t, c.Items())
	require.Zero(t, c.TotalItems())
	require.Zero(t, c.TotalPrice())
}

func TestCart_Totals(t *testing.T) {
	c := cart.New(cartrepofake.NewFakeCartRepo())
	mustAdd(t, c, riz, 2)
	mustAdd(t, c, huile, 3)

	require.Equal(t, 5, c.TotalItems())
	require.Equal(t, int64(3500), c.TotalPrice())
	require.Equal(t, int64(3500), c.TotalPrice())
}

func TestCart_QuantityStaysWithinStock(t *testing.T) {
	products := []cart.Product{riz, huile, {ID: "p-4", Price: 10, Stock: 1}}
	c := cart.New(cartrepofake.NewFakeCartRepo())
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		p := products[rnd.Intn(len(products))]
		if rnd.Intn(2) == 0 {
			_, err := c.AddItem(p)
			require.NoError(t, err)
		} else {
			_, err := c.UpdateQuantity(p.ID, rnd.Intn(15)-2)
			require.NoError(t, err)
		}

		for _, item := range c.Items() {
			require.GreaterOrEqual(t, item.Quantity, 1)
			require.LessOrEqual(t, item.Quantity, item.Stock)
		}
	}
}

func TestCart_ItemsIsACopy(t *testing.T) {
	c := cart.New(cartrepofake.NewFakeCartRepo())
	mustAdd(t, c, riz, 1)

	items := c.Items()
	items[0].Quantity = 50
	require.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_PersistsPerUser(t *testing.T) {
	repo := cartrepofake.NewFakeCartRepo()
	c := cart.New(repo)

	require.NoError(t, c.Bind("A"))
	require.Equal(t, "cart_A", c.UserKey())
	mustAdd(t, c, riz, 2)

	require.NoError(t, c.Bind("B"))
	require.Empty(t, c.Items())
	mustAdd(t, c, huile, 1)

	require.NoError(t, c.Bind("A"))
	require.Len(t, c.Items(), 1)
	require.Equal(t, riz.ID, c.Items()[0].ID)
	require.Equal(t, 2, c.Items()[0].Quantity)

	require.NoError(t, c.Bind("B"))
	require.Len(t, c.Items(), 1)
	require.Equal(t, huile.ID, c.Items()[0].ID)

	saved, err := repo.Load(cart.Key("A"))
	require.NoError(t, err)
	require.Len(t, saved, 1)
}

func TestCart_UnchangedOutcomesAreNotSaved(t *testing.T) {
	repo := cartrepofake.NewFakeCartRepo()
	c := cart.New(repo)
	require.NoError(t, c.Bind("A"))

	mustAdd(t, c, riz, 3)
	require.Equal(t, 3, repo.Saves())

	mustAdd(t, c, riz, 1)
	_, err := c.RemoveItem("p-404")
	require.NoError(t, err)
	require.Equal(t, 3, repo.Saves())
}

func TestCart_UnboundCartIsNotSaved(t *testing.T) {
	repo := cartrepofake.NewFakeCartRepo()
	c := cart.New(repo)

	mustAdd(t, c, riz, 1)
	require.Zero(t, repo.Saves())
	require.Empty(t, c.UserKey())
	require.Error(t, c.Bind(""))
}

func TestCart_FailedSaveKeepsState(t *testing.T) {
	repo := cartrepofake.NewFakeCartRepo()
	c := cart.New(repo)
	require.NoError(t, c.Bind("A"))
	mustAdd(t, c, riz, 1)

	repo.SaveErr = errors.New("disk full")
	_, err := c.AddItem(riz)
	require.ErrorIs(t, err, repo.SaveErr)
	require.Equal(t, 1, c.TotalItems())
}

type userSource struct {
	listeners []func(string)
}

func (s *userSource) OnUserChanged(fn func(string)) {
	s.listeners = append(s.listeners, fn)
}

func (s *userSource) login(userID string) {
	for _, fn := range s.listeners {
		fn(userID)
	}
}

func TestCart_Attach(t *testing.T) {
	src := &userSource{}
	c := cart.New(cartrepofake.NewFakeCartRepo())
	c.Attach(src)

	src.login("A")
	mustAdd(t, c, riz, 1)
	src.login("B")
	require.Empty(t, c.Items())
	require.Equal(t, cart.Key("B"), c.UserKey())
}

func TestCart_UnbindStopsSaving(t *testing.T) {
	src := &userSource{}
	repo := cartrepofake.NewFakeCartRepo()
	c := cart.New(repo)
	c.Attach(src)

	src.login("A")
	mustAdd(t, c, riz, 1)
	saved := repo.Saves()

	src.login("")
	require.Empty(t, c.UserKey())
	mustAdd(t, c, riz, 2)
	require.Equal(t, saved, repo.Saves())

	src.login("A")
	require.Equal(t, 1, c.TotalItems(), "the stored cart is what A gets back")
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "clamped to stock", cart.OutcomeClamped.String())
	require.True(t, cart.OutcomeClamped.Changed())
	require.False(t, cart.OutcomeAtStock.Changed())
	require.Equal(t, "Outcome(99)", cart.Outcome(99).String())
}

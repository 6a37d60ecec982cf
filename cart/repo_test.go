package cart_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jrsteele09/etokisana-client/cart"
	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestFileRepo(t *testing.T) {
	dir := t.TempDir()
	repo := cart.NewFileRepo(filepath.Join(dir, "carts"))

	_, err := repo.Load(cart.Key("A"))
	require.ErrorIs(t, err, clienterrors.ErrNotFound)

	items := []cart.Item{{ID: "p-1", Price: 1000, Stock: 3, Quantity: 2}}
	require.NoError(t, repo.Save(cart.Key("A"), items))

	loaded, err := repo.Load(cart.Key("A"))
	require.NoError(t, err)
	require.Equal(t, items, loaded)

	_, err = os.Stat(filepath.Join(dir, "carts", "cart_A.json"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(cart.Key("A"), nil))
	loaded, err = repo.Load(cart.Key("A"))
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestFileRepo_BindRestoresAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := cart.New(cart.NewFileRepo(dir))
	require.NoError(t, first.Bind("A"))
	_, err := first.AddItem(cart.Product{ID: "p-1", Price: 1000, Stock: 3})
	require.NoError(t, err)

	second := cart.New(cart.NewFileRepo(dir))
	require.NoError(t, second.Bind("A"))
	require.Equal(t, int64(1000), second.TotalPrice())
}

func TestFileRepo_BindDropsInvalidLines(t *testing.T) {
	dir := t.TempDir()
	data := `[{"id":"p-1","price":10,"stock":2,"quantity":5},{"id":"p-2","price":10,"stock":2,"quantity":0}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart_A.json"), []byte(data), 0o600))

	c := cart.New(cart.NewFileRepo(dir))
	require.NoError(t, c.Bind("A"))
	require.Len(t, c.Items(), 1)
	require.Equal(t, 2, c.Items()[0].Quantity)
}

func TestFileRepo_UserIDsWithSeparatorsStayIsolated(t *testing.T) {
	dir := t.TempDir()
	repo := cart.NewFileRepo(dir)

	victim := cart.New(repo)
	require.NoError(t, victim.Bind("victim"))
	_, err := victim.AddItem(cart.Product{ID: "p-1", Price: 1000, Stock: 3})
	require.NoError(t, err)

	for _, userID := range []string{"x/cart_victim", "../cart_victim", `x\cart_victim`} {
		other := cart.New(repo)
		require.NoError(t, other.Bind(userID))
		require.Empty(t, other.Items(), userID)

		_, err := other.AddItem(cart.Product{ID: "p-2", Price: 500, Stock: 3})
		require.NoError(t, err)
	}

	reloaded := cart.New(repo)
	require.NoError(t, reloaded.Bind("victim"))
	require.Len(t, reloaded.Items(), 1)
	require.Equal(t, "p-1", reloaded.Items()[0].ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4)
}

// Runs against a real server when REDIS_ADDR is set.
func TestRedisRepo(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	repo := cart.NewRedisRepo(client, cart.WithTTL(time.Minute), cart.WithRedisTimeout(time.Second))
	key := cart.Key(uuid.NewString())

	_, err := repo.Load(key)
	require.ErrorIs(t, err, clienterrors.ErrNotFound)

	items := []cart.Item{{ID: "p-1", Price: 1000, Stock: 3, Quantity: 2}}
	require.NoError(t, repo.Save(key, items))
	loaded, err := repo.Load(key)
	require.NoError(t, err)
	require.Equal(t, items, loaded)
}

package refreshrepofake

import (
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/jrsteele09/etokisana-client/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]refresh.StoredRefreshToken // origin to token
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.Origin] = *refreshToken
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(origin string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	delete(tr.tokens, origin)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(origin string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[origin]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	return &rt, nil
}

// Len returns the number of stored tokens.
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}

package refresh

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/pkg/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo keeps refresh tokens in a single JSON file readable only by the owner.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

// NewFileRepo returns a repo backed by path. The file is created on first write.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Upsert(refreshToken *StoredRefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.read()
	if err != nil {
		return err
	}
	tokens[refreshToken.Origin] = refreshToken
	return r.write(tokens)
}

func (r *FileRepo) Delete(origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[origin]; !ok {
		return nil
	}
	delete(tokens, origin)
	return r.write(tokens)
}

func (r *FileRepo) Get(origin string) (*StoredRefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.read()
	if err != nil {
		return nil, err
	}
	rt, ok := tokens[origin]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	return rt, nil
}

func (r *FileRepo) read() (map[string]*StoredRefreshToken, error) {
	tokens := make(map[string]*StoredRefreshToken)
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return tokens, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileRepo.read ReadFile")
	}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, errors.Wrap(err, "FileRepo.read Unmarshal")
	}
	return tokens, nil
}

func (r *FileRepo) write(tokens map[string]*StoredRefreshToken) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return errors.Wrap(err, "FileRepo.write Marshal")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "FileRepo.write MkdirAll")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "FileRepo.write WriteFile")
	}
	return errors.Wrap(os.Rename(tmp, r.path), "FileRepo.write Rename")
}

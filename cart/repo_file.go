package cart

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/pkg/errors"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo stores each cart as <dir>/<escaped key>.json. Keys are path
// escaped, so distinct keys never share a file.
type FileRepo struct {
	dir string
	mu  sync.Mutex
}

func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{dir: dir}
}

func (r *FileRepo) Load(key string) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(key))
	if os.IsNotExist(err) {
		return nil, clienterrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileRepo.Load ReadFile")
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "FileRepo.Load Unmarshal")
	}
	return items, nil
}

func (r *FileRepo) Save(key string, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "FileRepo.Save Marshal")
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return errors.Wrap(err, "FileRepo.Save MkdirAll")
	}
	path := r.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "FileRepo.Save WriteFile")
	}
	return errors.Wrap(os.Rename(tmp, path), "FileRepo.Save Rename")
}

func (r *FileRepo) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

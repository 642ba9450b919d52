package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileKV stores every key in a single JSON object file. Writes go to a temp
// file in the same directory followed by a rename, so a crash never leaves a
// half-written store behind.
type FileKV struct {
	path string
	mu   sync.Mutex
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path returns the backing file.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) load() (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading store file %s", f.path)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(err, "store file %s is corrupt", f.path)
	}
	return data, nil
}

func (f *FileKV) save(data map[string]string) (err error) {
	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrapf(err, "failed creating store directory %s", dir)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed encoding store file")
	}

	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed creating temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed writing %s", tmpName)
	}
	if err = tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed setting permissions on %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed closing %s", tmpName)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		return errors.Wrapf(err, "failed replacing store file %s", f.path)
	}
	return nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = value
	return f.save(data)
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

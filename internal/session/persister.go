package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FilePersister stores the session context as a JSON file, the server-side
// analogue of browser local storage. Writes go through a temp file and
// rename so a crash never leaves a torn file.
type FilePersister struct {
	path string
}

// NewFilePersister builds a persister writing to path.
func NewFilePersister(path string) (*FilePersister, error) {
	if path == "" {
		path = "session.json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &FilePersister{path: path}, nil
}

// Load reads the stored context; ok is false when none was saved yet.
func (p *FilePersister) Load() (Context, bool, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Context{}, false, nil
	}
	if err != nil {
		return Context{}, false, err
	}
	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return Context{}, false, err
	}
	return ctx, true, nil
}

// Save writes the context atomically.
func (p *FilePersister) Save(ctx Context) error {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".session-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

// Clear removes the stored context.
func (p *FilePersister) Clear() error {
	err := os.Remove(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryPersister keeps the context in process memory, for tests.
type MemoryPersister struct {
	mu    sync.Mutex
	ctx   Context
	saved bool
}

// NewMemoryPersister returns an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister { return &MemoryPersister{} }

// Load returns the stored context, if any.
func (p *MemoryPersister) Load() (Context, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx.clone(), p.saved, nil
}

// Save stores the context.
func (p *MemoryPersister) Save(ctx Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = ctx.clone()
	p.saved = true
	return nil
}

// Clear drops the stored context.
func (p *MemoryPersister) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctx = Context{}
	p.saved = false
	return nil
}

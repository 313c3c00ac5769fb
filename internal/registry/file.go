package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// ErrInvalidFile is wrapped by every parse or validation failure of a registry file.
var ErrInvalidFile = errors.New("invalid website registry file")

// fileSchema is the on-disk layout:
//
//	websites:
//	  - id: site_1
//	    name: Example
//	    domain: example.com
//	    apiKey: ak_...
//	    isActive: true
type fileSchema struct {
	Websites []models.Website `yaml:"websites"`
}

// File is a Memory registry backed by a YAML file that can be hot-reloaded.
type File struct {
	*Memory

	path string
	log  logger.Logger

	mu       sync.Mutex
	onReload []func(n int)
}

// NewFile loads path once. The registry is usable immediately.
func NewFile(path string, log logger.Logger) (*File, error) {
	if log == nil {
		log = logger.Nop()
	}
	websites, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Memory: NewMemory(websites...), path: path, log: log}, nil
}

// OnReload registers a callback invoked with the website count after each successful reload.
func (f *File) OnReload(fn func(n int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onReload = append(f.onReload, fn)
}

// Reload re-reads the file. On failure the previous contents stay in place.
func (f *File) Reload() error {
	websites, err := readFile(f.path)
	if err != nil {
		return err
	}
	f.Replace(websites)

	f.mu.Lock()
	callbacks := make([]func(int), len(f.onReload))
	copy(callbacks, f.onReload)
	f.mu.Unlock()
	for _, fn := range callbacks {
		fn(len(websites))
	}
	return nil
}

// Watch reloads the file whenever it is written or replaced until ctx is done
// or the returned stop function is called.
func (f *File) Watch(ctx context.Context) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("registry watcher: %w", err)
	}
	// Watch the directory so editors that rename-over the file keep working.
	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("registry watcher add %s: %w", dir, err)
	}

	target := filepath.Clean(f.path)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := f.Reload(); err != nil {
					f.log.Warn(ctx, "website registry reload failed; keeping previous contents",
						logger.String("path", f.path), logger.Error(err))
					continue
				}
				f.log.Info(ctx, "website registry reloaded",
					logger.String("path", f.path), logger.Int("websites", f.Len()))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.log.Warn(ctx, "website registry watcher error", logger.Error(err))
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}

func readFile(path string) ([]models.Website, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	var doc fileSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidFile, path, err)
	}
	seen := make(map[string]struct{}, len(doc.Websites))
	for i, w := range doc.Websites {
		if strings.TrimSpace(w.ID) == "" || strings.TrimSpace(w.APIKey) == "" {
			return nil, fmt.Errorf("%w: websites[%d] needs id and apiKey", ErrInvalidFile, i)
		}
		if _, dup := seen[w.APIKey]; dup {
			return nil, fmt.Errorf("%w: websites[%d] reuses an apiKey", ErrInvalidFile, i)
		}
		seen[w.APIKey] = struct{}{}
	}
	return doc.Websites, nil
}

package ml

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader holds the currently served model and swaps it in place when
// the artifact or its sidecar config is rewritten on disk. Readers get a
// consistent (model, config) pair.
type Reloader struct {
	modelPath  string
	configPath string
	log        *zap.Logger

	mu     sync.RWMutex
	model  *Model
	config *ModelConfig
}

// NewReloader loads the artifact and sidecar once, failing if either is
// missing or malformed.
func NewReloader(modelPath, configPath string, log *zap.Logger) (*Reloader, error) {
	r := &Reloader{modelPath: modelPath, configPath: configPath, log: log}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Model returns the current model and config.
func (r *Reloader) Model() (*Model, *ModelConfig) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.model, r.config
}

// Watch blocks until ctx is done, reloading the model whenever the
// artifact or config file changes. A failed reload keeps the previous
// model serving.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and trainers replace files rather
	// than writing them in place.
	if err := watcher.Add(filepath.Dir(r.modelPath)); err != nil {
		return err
	}
	if filepath.Dir(r.configPath) != filepath.Dir(r.modelPath) {
		if err := watcher.Add(filepath.Dir(r.configPath)); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Name != r.modelPath && event.Name != r.configPath {
				continue
			}
			if err := r.reload(); err != nil {
				r.log.Warn("model reload failed, keeping previous model",
					zap.String("path", event.Name), zap.Error(err))
				continue
			}
			r.log.Info("model reloaded", zap.String("path", event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("model watcher error", zap.Error(err))
		}
	}
}

func (r *Reloader) reload() error {
	model, err := LoadModel(r.modelPath)
	if err != nil {
		return err
	}
	config, err := LoadModelConfig(r.configPath)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.model = model
	r.config = config
	r.mu.Unlock()
	return nil
}

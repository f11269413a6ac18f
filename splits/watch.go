package splits

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/fsnotify/fsnotify"
)

// SettingsStore holds the live settings, safe for concurrent use.
type SettingsStore struct {
	mu       sync.RWMutex
	settings Settings
	path     string
	log      *logger.Logger
}

// NewSettingsStore starts with s. path may be empty when there is no settings file.
func NewSettingsStore(s Settings, path string) *SettingsStore {
	return &SettingsStore{
		settings: s,
		path:     path,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "settings")),
	}
}

// OpenSettingsStore loads path, a missing file yields the defaults.
func OpenSettingsStore(path string) (*SettingsStore, error) {
	store := NewSettingsStore(DefaultSettings(), path)
	if path == "" {
		return store, nil
	}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Get returns a copy of the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Set replaces the current settings.
func (s *SettingsStore) Set(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Reload re-reads the settings file. A file that does not exist is not an error,
// the settings keep their value. A broken file is reported and ignored.
func (s *SettingsStore) Reload() error {
	if s.path == "" {
		return nil
	}
	settings, err := LoadSettings(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	s.Set(settings)
	s.log.Infoln("settings loaded from", s.path)
	return nil
}

// Watch reloads the settings whenever the file changes, until ctx is done.
// The directory is watched so editors that replace the file are followed.
func (s *SettingsStore) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch settings: %w", err)
	}
	defer w.Close()

	dir, name := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				if err := s.Reload(); err != nil {
					s.log.Warn("keeping previous settings: ", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("settings watcher: ", err)
		}
	}
}

package services

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"level-thumbnails/internal/models"
)

// SettingsService holds the process-wide runtime settings behind a
// read-write lock. Readers get a snapshot, admin writes replace it and
// persist to disk so a restart keeps the last decision.
type SettingsService struct {
	mu      sync.RWMutex
	current models.Settings
	path    string
}

func NewSettingsService(path string) *SettingsService {
	s := &SettingsService{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warnf("failed to read %s, using default settings: %v", path, err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.current); err != nil {
		log.Warnf("failed to parse %s, using default settings: %v", path, err)
		s.current = models.Settings{}
	}
	return s
}

func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) Update(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}

	s.current = settings
	return nil
}

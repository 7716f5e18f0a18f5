package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/lockedin/go-focus-monitor/internal/util"
)

// Store persists user-defined profiles, one JSON file per profile.
// Built-in profiles are never written to disk.
type Store struct {
	dir string
}

// NewStore creates a profile store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create profiles directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads every profile file in the store directory. Unreadable files
// are skipped with a warning so one corrupt file cannot block startup.
func (s *Store) Load() ([]Profile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		p, err := s.loadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			util.LogWarnf("Skipping unreadable profile file %s: %v", entry.Name(), err)
			continue
		}
		profiles = append(profiles, p)
	}

	util.LogInfof("Loaded %d profiles from %s", len(profiles), s.dir)
	return profiles, nil
}

// LoadFile reads a single profile file.
func (s *Store) LoadFile(path string) (Profile, error) {
	return s.loadFile(path)
}

func (s *Store) loadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := sonic.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	// Files on disk are always user-defined.
	p.BuiltIn = false
	return p, nil
}

// Save writes a profile atomically via a temp file and rename.
func (s *Store) Save(p Profile) error {
	if p.BuiltIn {
		return fmt.Errorf("refusing to persist built-in profile %s", p.Name)
	}

	data, err := sonic.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	path := s.path(p.Name)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	util.LogDebugf("Saved profile %s to %s", p.Name, path)
	return nil
}

// Delete removes a profile file. Missing files are not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, util.SanitizeName(name)+".json")
}

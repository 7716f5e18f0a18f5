package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/lockedin/go-focus-monitor/internal/util"
)

// DistractionCache remembers process/window-title pairs already judged
// distracting, so a known-bad page never costs another model call. One
// cache file per profile.
type DistractionCache struct {
	mu      sync.Mutex
	path    string
	entries map[pairKey]struct{}
}

type pairKey struct {
	Process string
	Title   string
}

type cacheFile struct {
	Distractions [][]string `json:"distractions"`
}

// NewDistractionCache loads (or initializes) the cache for a profile.
func NewDistractionCache(dir, profileName string) (*DistractionCache, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create distraction cache directory: %w", err)
	}

	c := &DistractionCache{
		path:    filepath.Join(dir, util.SanitizeName(profileName)+".json"),
		entries: make(map[pairKey]struct{}),
	}
	if err := c.load(); err != nil {
		util.LogWarnf("Failed to load distraction cache, starting fresh: %v", err)
	}
	return c, nil
}

func normalizeKey(process, title string) pairKey {
	return pairKey{
		Process: strings.ToLower(strings.TrimSpace(process)),
		Title:   strings.ToLower(strings.TrimSpace(title)),
	}
}

// IsDistracting reports whether the pair is cached as distracting.
func (c *DistractionCache) IsDistracting(process, title string) bool {
	key := normalizeKey(process, title)
	if key.Process == "" && key.Title == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// AddDistracting records the pair and persists the cache.
func (c *DistractionCache) AddDistracting(process, title string) {
	key := normalizeKey(process, title)
	if key.Process == "" && key.Title == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = struct{}{}
	if err := c.save(); err != nil {
		util.LogWarnf("Failed to save distraction cache: %v", err)
	}
	util.LogInfof("Cached distraction: %s | %s", key.Process, key.Title)
}

// Len returns the number of cached pairs.
func (c *DistractionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all cached pairs and persists the empty cache.
func (c *DistractionCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[pairKey]struct{})
	return c.save()
}

func (c *DistractionCache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var cf cacheFile
	if err := sonic.Unmarshal(data, &cf); err != nil {
		return err
	}
	for _, pair := range cf.Distractions {
		if len(pair) != 2 {
			continue
		}
		c.entries[pairKey{Process: pair[0], Title: pair[1]}] = struct{}{}
	}
	util.LogDebugf("Loaded %d cached distractions from %s", len(c.entries), c.path)
	return nil
}

// save writes atomically via temp file and rename. Caller holds the lock.
func (c *DistractionCache) save() error {
	cf := cacheFile{Distractions: make([][]string, 0, len(c.entries))}
	for key := range c.entries {
		cf.Distractions = append(cf.Distractions, []string{key.Process, key.Title})
	}

	data, err := sonic.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}

	tempPath := c.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, c.path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

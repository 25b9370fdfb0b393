package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dfreire/gridmaze/game/engine"
	"github.com/dfreire/gridmaze/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level file")
)

// levelExtensions lists recognized level file extensions, in lookup order.
// ".json" uses the editor schema; ".txt" is the compact ASCII format.
var levelExtensions = []string{".json", ".txt"}

// Manager handles level loading and caching over a levels directory.
type Manager struct {
	levelDir     string
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level catalog manager.
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// Load loads a level by name (the filename without extension).
func (m *Manager) Load(name string) (*engine.LevelConfig, error) {
	m.mu.RLock()
	if cfg, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return cfg, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cfg, exists := m.levels[name]; exists {
		return cfg, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	cfg, err := engine.LoadLevel(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	m.levels[name] = cfg
	return cfg, nil
}

// resolve maps a level name to its file path, trying each known extension.
// Caller holds the write lock.
func (m *Manager) resolve(name string) (string, error) {
	if ext := filepath.Ext(name); ext != "" {
		path := filepath.Join(m.levelDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", ErrLevelNotFound
	}
	for _, ext := range levelExtensions {
		path := filepath.Join(m.levelDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrLevelNotFound
}

// List returns information about all available levels.
func (m *Manager) List() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var infos []*service.LevelInfo
	for _, entry := range entries {
		if entry.IsDir() || !hasLevelExtension(entry.Name()) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		cfg, err := m.Load(name)
		if err != nil {
			// Skip unreadable or invalid level files
			continue
		}

		infos = append(infos, Describe(name, cfg))
	}

	return infos, nil
}

// Describe summarizes a level description for catalog listings.
func Describe(name string, cfg *engine.LevelConfig) *service.LevelInfo {
	return &service.LevelInfo{
		Name:     name,
		Rows:     cfg.Rows,
		Cols:     cfg.Cols,
		Pursuers: len(cfg.FastH) + len(cfg.FastV) + len(cfg.Slow),
		Traps:    len(cfg.Traps),
		Keys:     len(cfg.Keys),
		Gates:    countEdges(cfg.VGates) + countEdges(cfg.HGates),
	}
}

// Default returns the default level.
func (m *Manager) Default() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name.
func (m *Manager) SetDefault(name string) error {
	cfg, err := m.Load(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = cfg
	return nil
}

// RefreshCache drops all cached levels so the next Load rereads from disk.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levels = make(map[string]*engine.LevelConfig)
	return m.loadDefaultLevelLocked()
}

func (m *Manager) loadDefaultLevel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadDefaultLevelLocked()
}

// loadDefaultLevelLocked prefers a level named "classic", then the first
// listed level, then the built-in fallback. Caller holds the write lock.
func (m *Manager) loadDefaultLevelLocked() error {
	cfg, err := m.loadLocked("classic")
	if err == nil {
		m.defaultLevel = cfg
		return nil
	}

	entries, err := os.ReadDir(m.levelDir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !hasLevelExtension(entry.Name()) {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if cfg, err := m.loadLocked(name); err == nil {
				m.defaultLevel = cfg
				return nil
			}
		}
	}

	m.defaultLevel = builtinLevel()
	return nil
}

// loadLocked is Load without locking, for use under the write lock.
func (m *Manager) loadLocked(name string) (*engine.LevelConfig, error) {
	if cfg, exists := m.levels[name]; exists {
		return cfg, nil
	}
	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	cfg, err := engine.LoadLevel(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	m.levels[name] = cfg
	return cfg, nil
}

// Save writes a level to disk as JSON and updates the cache.
func (m *Manager) Save(name string, cfg *engine.LevelConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}
	path := filepath.Join(m.levelDir, filename)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[strings.TrimSuffix(filename, ".json")] = cfg
	m.mu.Unlock()

	return nil
}

func hasLevelExtension(filename string) bool {
	ext := filepath.Ext(filename)
	for _, e := range levelExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func countEdges(m [][]bool) int {
	n := 0
	for _, row := range m {
		for _, set := range row {
			if set {
				n++
			}
		}
	}
	return n
}

// builtinLevel is the fallback when the level directory has no usable files:
// a 5x5 board with one slow pursuer, a trap, and a key-gated exit corridor.
func builtinLevel() *engine.LevelConfig {
	vGates := make([][]bool, 5)
	for r := range vGates {
		vGates[r] = make([]bool, 6)
	}
	vGates[0][4] = true

	return &engine.LevelConfig{
		Name:     "default",
		Rows:     5,
		Cols:     5,
		VGates:   vGates,
		Explorer: []int{4, 0},
		Exit:     []int{0, 4},
		Slow:     [][]int{{0, 0}},
		Traps:    [][]int{{2, 2}},
		Keys:     [][]int{{4, 2}},
	}
}

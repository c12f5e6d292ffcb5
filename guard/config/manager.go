package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/raidstone/wgevents/guard/region"
)

var (
	ErrWorldNotFound = errors.New("world not found")
	ErrInvalidWorld  = errors.New("invalid world definition")
)

// Manager loads world files from a directory and answers region queries
// against them. It implements region.RegionDirectory.
type Manager struct {
	regionsDir string
	worlds     map[string]*loadedWorld
	mu         sync.RWMutex
}

type loadedWorld struct {
	filename string
	def      *WorldDef
}

// NewManager creates a manager and loads every world file in regionsDir
func NewManager(regionsDir string) (*Manager, error) {
	if _, err := os.Stat(regionsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("regions directory does not exist: %s", regionsDir)
	}

	m := &Manager{
		regionsDir: regionsDir,
		worlds:     make(map[string]*loadedWorld),
	}

	if err := m.loadAll(); err != nil {
		return nil, err
	}

	return m, nil
}

// ApplicableRegions returns the regions containing at, including the world's
// global region if one is defined
func (m *Manager) ApplicableRegions(at region.Coordinate) []region.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.worlds[strings.ToLower(at.World)]
	if !ok {
		return nil
	}

	p := at.Point()
	var out []region.Region
	for i := range w.def.Regions {
		r := &w.def.Regions[i]
		if r.Contains(p) {
			out = append(out, r.Region())
		}
	}
	return out
}

// LoadWorld returns the definition of a world by name (case-insensitive)
func (m *Manager) LoadWorld(name string) (*WorldDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.worlds[strings.ToLower(name)]
	if !ok {
		return nil, ErrWorldNotFound
	}
	return w.def, nil
}

// ListWorlds returns information about all loaded worlds, sorted by name
func (m *Manager) ListWorlds() ([]*WorldInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	worlds := make([]*WorldInfo, 0, len(m.worlds))
	for _, w := range m.worlds {
		info := &WorldInfo{
			Filename:    w.filename,
			World:       w.def.World,
			Description: w.def.Description,
			RegionCount: len(w.def.Regions),
		}
		for i := range w.def.Regions {
			if w.def.Regions[i].IsGlobal() {
				info.HasGlobal = true
				break
			}
		}
		worlds = append(worlds, info)
	}

	sort.Slice(worlds, func(i, j int) bool { return worlds[i].World < worlds[j].World })
	return worlds, nil
}

// SaveWorld validates def and writes it to disk. An existing YAML file for
// the world is rewritten as YAML; otherwise the world is written as JSON.
func (m *Manager) SaveWorld(def *WorldDef) error {
	if err := ValidateWorld(def); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWorld, err)
	}

	key := strings.ToLower(def.World)

	m.mu.Lock()
	defer m.mu.Unlock()

	filename := def.World + ".json"
	if existing, ok := m.worlds[key]; ok {
		filename = existing.filename
	}

	data, err := encodeWorld(filename, def)
	if err != nil {
		return fmt.Errorf("failed to encode world: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.regionsDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}

	m.worlds[key] = &loadedWorld{filename: filename, def: def}
	return nil
}

// RefreshCache reloads every world file from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.worlds = make(map[string]*loadedWorld)
	return m.loadAllLocked()
}

func (m *Manager) loadAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadAllLocked()
}

// loadAllLocked reads the regions directory. Invalid files are skipped with a
// warning so one bad file does not take the others down.
func (m *Manager) loadAllLocked() error {
	entries, err := os.ReadDir(m.regionsDir)
	if err != nil {
		return fmt.Errorf("failed to read regions directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsWorldFile(entry.Name()) {
			continue
		}

		def, err := LoadWorldFile(filepath.Join(m.regionsDir, entry.Name()))
		if err != nil {
			fmt.Printf("Warning: skipping world file %s: %v\n", entry.Name(), err)
			continue
		}

		key := strings.ToLower(def.World)
		if existing, dup := m.worlds[key]; dup {
			fmt.Printf("Warning: world %s defined in both %s and %s, keeping %s\n",
				def.World, existing.filename, entry.Name(), existing.filename)
			continue
		}
		m.worlds[key] = &loadedWorld{filename: entry.Name(), def: def}
	}

	return nil
}

// IsWorldFile reports whether name has a supported world file extension
func IsWorldFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadWorldFile parses and validates a single world file. A file without a
// world field takes its world name from the file name.
func LoadWorldFile(path string) (*WorldDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}

	def, err := decodeWorld(path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse world file: %w", err)
	}

	if def.World == "" {
		base := filepath.Base(path)
		def.World = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := ValidateWorld(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorld, err)
	}

	return def, nil
}

func decodeWorld(filename string, data []byte) (*WorldDef, error) {
	var def WorldDef
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, err
		}
	}
	return &def, nil
}

func encodeWorld(filename string, def *WorldDef) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return yaml.Marshal(def)
	default:
		return json.MarshalIndent(def, "", "  ")
	}
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/raidstone/wgevents/guard/region"
)

func createValidWorld() *WorldDef {
	return &WorldDef{
		World:       "world",
		Description: "Test world",
		Regions: []RegionDef{
			{ID: "__global__", Flags: map[string]string{"pvp": "deny"}},
			{
				ID:       "Spawn",
				Priority: 10,
				Min:      region.Vector{X: -10, Y: 0, Z: -10},
				Max:      region.Vector{X: 10, Y: 255, Z: 10},
			},
			{
				ID:    "pvp",
				Min:   region.Vector{X: 0, Y: 0, Z: 0},
				Max:   region.Vector{X: 20, Y: 255, Z: 20},
				Flags: map[string]string{"pvp": "allow"},
			},
		},
	}
}

func writeWorldFile(t *testing.T, dir, filename string, def *WorldDef) {
	t.Helper()
	data, err := encodeWorld(filename, def)
	if err != nil {
		t.Fatalf("Failed to encode world: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write world file: %v", err)
	}
}

const yamlWorld = `world: nether
description: Nether regions
regions:
  - id: Fortress
    priority: 5
    min: {x: 100, y: 30, z: 100}
    max: {x: 200, y: 90, z: 200}
`

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/regions")
		if err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("loads json and yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeWorldFile(t, dir, "world.json", createValidWorld())
		if err := os.WriteFile(filepath.Join(dir, "nether.yaml"), []byte(yamlWorld), 0644); err != nil {
			t.Fatalf("Failed to write yaml: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
			t.Fatalf("Failed to write txt: %v", err)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		worlds, err := manager.ListWorlds()
		if err != nil {
			t.Fatalf("ListWorlds failed: %v", err)
		}
		if len(worlds) != 2 {
			t.Fatalf("Expected 2 worlds, got %d", len(worlds))
		}
		if worlds[0].World != "nether" || worlds[1].World != "world" {
			t.Errorf("Unexpected world order: %s, %s", worlds[0].World, worlds[1].World)
		}
		if !worlds[1].HasGlobal || worlds[1].RegionCount != 3 {
			t.Errorf("Unexpected world info: %+v", worlds[1])
		}
	})

	t.Run("skips invalid files", func(t *testing.T) {
		dir := t.TempDir()
		writeWorldFile(t, dir, "world.json", createValidWorld())
		if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		worlds, _ := manager.ListWorlds()
		if len(worlds) != 1 {
			t.Errorf("Expected 1 world, got %d", len(worlds))
		}
	})
}

func TestManager_ApplicableRegions(t *testing.T) {
	dir := t.TempDir()
	writeWorldFile(t, dir, "world.json", createValidWorld())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	tests := []struct {
		name     string
		at       region.Coordinate
		expected []region.RegionID
	}{
		{"overlap", region.Coordinate{World: "world", X: 5, Y: 64, Z: 5}, []region.RegionID{"Spawn", "__global__", "pvp"}},
		{"spawn only", region.Coordinate{World: "world", X: -5, Y: 64, Z: -5}, []region.RegionID{"Spawn", "__global__"}},
		{"global only", region.Coordinate{World: "world", X: 500, Y: 64, Z: 500}, []region.RegionID{"__global__"}},
		{"fractional inside bound", region.Coordinate{World: "world", X: 10.9, Y: 64, Z: 0}, []region.RegionID{"Spawn", "__global__", "pvp"}},
		{"fractional below bound", region.Coordinate{World: "world", X: -10.1, Y: 64, Z: 0}, []region.RegionID{"__global__"}},
		{"world name ignores case", region.Coordinate{World: "WORLD", X: -5, Y: 64, Z: -5}, []region.RegionID{"Spawn", "__global__"}},
		{"unknown world", region.Coordinate{World: "end", X: 0, Y: 0, Z: 0}, []region.RegionID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := region.NewRegionSet(manager.ApplicableRegions(tt.at)...).IDs()
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
					break
				}
			}
		})
	}

	t.Run("flags are copied", func(t *testing.T) {
		regions := manager.ApplicableRegions(region.Coordinate{World: "world", X: 15, Y: 64, Z: 15})
		for _, r := range regions {
			if r.ID == "pvp" {
				r.Flags["pvp"] = "changed"
			}
		}
		def, _ := manager.LoadWorld("world")
		if def.Regions[2].Flags["pvp"] != "allow" {
			t.Error("Mutating returned flags changed the definition")
		}
	})
}

func TestManager_SaveWorld(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "nether.yml"), []byte(yamlWorld), 0644); err != nil {
		t.Fatalf("Failed to write yaml: %v", err)
	}
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	t.Run("new world written as json", func(t *testing.T) {
		if err := manager.SaveWorld(createValidWorld()); err != nil {
			t.Fatalf("SaveWorld failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "world.json"))
		if err != nil {
			t.Fatalf("Expected world.json on disk: %v", err)
		}
		var def WorldDef
		if err := json.Unmarshal(data, &def); err != nil {
			t.Fatalf("Saved file is not JSON: %v", err)
		}
		if len(def.Regions) != 3 {
			t.Errorf("Expected 3 regions on disk, got %d", len(def.Regions))
		}
	})

	t.Run("existing yaml world keeps its file", func(t *testing.T) {
		def, err := manager.LoadWorld("Nether")
		if err != nil {
			t.Fatalf("LoadWorld failed: %v", err)
		}
		updated := *def
		updated.Regions = append([]RegionDef{}, def.Regions...)
		updated.Regions = append(updated.Regions, RegionDef{
			ID:  "Bridge",
			Min: region.Vector{X: 0, Y: 60, Z: 0},
			Max: region.Vector{X: 5, Y: 70, Z: 50},
		})

		if err := manager.SaveWorld(&updated); err != nil {
			t.Fatalf("SaveWorld failed: %v", err)
		}

		reloaded, err := LoadWorldFile(filepath.Join(dir, "nether.yml"))
		if err != nil {
			t.Fatalf("LoadWorldFile failed: %v", err)
		}
		if len(reloaded.Regions) != 2 {
			t.Errorf("Expected 2 regions after save, got %d", len(reloaded.Regions))
		}
	})

	t.Run("invalid world rejected", func(t *testing.T) {
		bad := createValidWorld()
		bad.Regions = append(bad.Regions, RegionDef{ID: "SPAWN"})
		err := manager.SaveWorld(bad)
		if !errors.Is(err, ErrInvalidWorld) {
			t.Errorf("Expected ErrInvalidWorld, got %v", err)
		}
	})

	t.Run("world name cannot escape the directory", func(t *testing.T) {
		bad := createValidWorld()
		bad.World = "../outside"
		if err := manager.SaveWorld(bad); !errors.Is(err, ErrInvalidWorld) {
			t.Fatalf("Expected ErrInvalidWorld, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.json")); !os.IsNotExist(err) {
			t.Errorf("Expected nothing written outside the regions directory, got %v", err)
		}
	})

	t.Run("refresh picks up new files", func(t *testing.T) {
		other := createValidWorld()
		other.World = "creative"
		writeWorldFile(t, dir, "creative.json", other)

		if _, err := manager.LoadWorld("creative"); !errors.Is(err, ErrWorldNotFound) {
			t.Fatalf("Expected ErrWorldNotFound before refresh, got %v", err)
		}
		if err := manager.RefreshCache(); err != nil {
			t.Fatalf("RefreshCache failed: %v", err)
		}
		if _, err := manager.LoadWorld("creative"); err != nil {
			t.Errorf("Expected creative after refresh, got %v", err)
		}
	})
}

func TestManager_ConcurrentQueries(t *testing.T) {
	dir := t.TempDir()
	writeWorldFile(t, dir, "world.json", createValidWorld())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			manager.ApplicableRegions(region.Coordinate{World: "world", X: 1, Y: 1, Z: 1})
		}()
		go func() {
			defer wg.Done()
			_ = manager.RefreshCache()
		}()
	}
	wg.Wait()
}

func TestValidateWorld(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorldDef)
		wantErr bool
	}{
		{"valid", func(*WorldDef) {}, false},
		{"missing world", func(d *WorldDef) { d.World = "" }, true},
		{"world with separator", func(d *WorldDef) { d.World = "../etc/passwd" }, true},
		{"world with backslash", func(d *WorldDef) { d.World = `a\b` }, true},
		{"world with dots", func(d *WorldDef) { d.World = ".." }, true},
		{"empty id", func(d *WorldDef) { d.Regions[1].ID = " " }, true},
		{"whitespace id", func(d *WorldDef) { d.Regions[1].ID = "my spawn" }, true},
		{"duplicate id ignoring case", func(d *WorldDef) { d.Regions[2].ID = "SPAWN" }, true},
		{"inverted bounds", func(d *WorldDef) { d.Regions[1].Min.Y = 300 }, true},
		{"global without bounds", func(d *WorldDef) { d.Regions[0].Min = region.Vector{X: 5} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := createValidWorld()
			tt.mutate(def)
			err := ValidateWorld(def)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorld() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	pairs := Overlaps(createValidWorld())
	if len(pairs) != 1 || pairs[0] != [2]string{"Spawn", "pvp"} {
		t.Errorf("Expected one Spawn/pvp overlap, got %v", pairs)
	}
}

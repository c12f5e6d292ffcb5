package region

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// fakeRegionDirectory returns the regions registered for a world
type fakeRegionDirectory struct {
	ApplicableRegionsFunc func(at Coordinate) []Region
}

func (f *fakeRegionDirectory) ApplicableRegions(at Coordinate) []Region {
	if f.ApplicableRegionsFunc != nil {
		return f.ApplicableRegionsFunc(at)
	}
	return nil
}

// fakeActorDirectory resolves actors from a fixed map
type fakeActorDirectory struct {
	positions map[ActorRef]Coordinate
}

func (f *fakeActorDirectory) Resolve(actor ActorRef) (Coordinate, bool) {
	at, ok := f.positions[actor]
	return at, ok
}

var spawnPoint = Coordinate{World: "world", X: 0, Y: 64, Z: 0}

func newTestEvaluator(t *testing.T, regions ...Region) (*Evaluator, ActorRef) {
	t.Helper()

	dir := &fakeRegionDirectory{
		ApplicableRegionsFunc: func(at Coordinate) []Region {
			if at == spawnPoint {
				return regions
			}
			return nil
		},
	}

	handle := NewDirectoryHandle()
	if err := handle.Init(dir); err != nil {
		t.Fatalf("Failed to init handle: %v", err)
	}

	player := uuid.New()
	actors := &fakeActorDirectory{positions: map[ActorRef]Coordinate{player: spawnPoint}}
	return NewEvaluator(handle, actors), player
}

func TestEvaluator_RegionsAt(t *testing.T) {
	t.Run("returns exactly the directory regions", func(t *testing.T) {
		eval, _ := newTestEvaluator(t,
			Region{ID: "Spawn", Priority: 10},
			Region{ID: "pvp"},
		)

		set, err := eval.RegionsAt(spawnPoint)
		if err != nil {
			t.Fatalf("RegionsAt failed: %v", err)
		}
		if set.Len() != 2 {
			t.Errorf("Expected 2 regions, got %d", set.Len())
		}
		if r, ok := set.Get("Spawn"); !ok || r.Priority != 10 {
			t.Errorf("Expected Spawn with priority 10, got %+v (found=%v)", r, ok)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		eval, _ := newTestEvaluator(t, Region{ID: "spawn"}, Region{ID: "spawn"})

		set, err := eval.RegionsAt(spawnPoint)
		if err != nil {
			t.Fatalf("RegionsAt failed: %v", err)
		}
		if set.Len() != 1 {
			t.Errorf("Expected 1 region, got %d", set.Len())
		}
	})

	t.Run("no regions yields empty set", func(t *testing.T) {
		eval, _ := newTestEvaluator(t, Region{ID: "spawn"})

		set, err := eval.RegionsAt(Coordinate{World: "nether"})
		if err != nil {
			t.Fatalf("RegionsAt failed: %v", err)
		}
		if !set.IsEmpty() {
			t.Errorf("Expected empty set, got %v", set.IDs())
		}
		if set.IDs() == nil {
			t.Error("Expected non-nil id slice")
		}
	})
}

func TestEvaluator_RegionNamesAt(t *testing.T) {
	eval, _ := newTestEvaluator(t, Region{ID: "Spawn"}, Region{ID: "PvP"})

	names, err := eval.RegionNamesAt(spawnPoint)
	if err != nil {
		t.Fatalf("RegionNamesAt failed: %v", err)
	}

	expected := []RegionID{"PvP", "Spawn"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected verbatim names %v, got %v", expected, names)
	}
}

func TestEvaluator_RegionsOf(t *testing.T) {
	eval, player := newTestEvaluator(t, Region{ID: "spawn"}, Region{ID: "pvp"})

	t.Run("online actor", func(t *testing.T) {
		names, err := eval.RegionNamesOf(player)
		if err != nil {
			t.Fatalf("RegionNamesOf failed: %v", err)
		}
		if len(names) != 2 {
			t.Errorf("Expected 2 regions, got %v", names)
		}
	})

	t.Run("unknown actor", func(t *testing.T) {
		set, err := eval.RegionsOf(uuid.New())
		if err != nil {
			t.Fatalf("Expected no error for offline actor, got %v", err)
		}
		if !set.IsEmpty() {
			t.Errorf("Expected empty set, got %v", set.IDs())
		}

		names, err := eval.RegionNamesOf(uuid.New())
		if err != nil {
			t.Fatalf("Expected no error for offline actor, got %v", err)
		}
		if len(names) != 0 {
			t.Errorf("Expected no names, got %v", names)
		}
	})
}

func TestEvaluator_IsIn(t *testing.T) {
	eval, player := newTestEvaluator(t, Region{ID: "spawn"}, Region{ID: "pvp"})

	tests := []struct {
		name     string
		required []string
		mode     Mode
		expected bool
	}{
		{"all present", []string{"spawn", "pvp"}, All, true},
		{"all with one missing", []string{"spawn", "arena"}, All, false},
		{"any with one present", []string{"arena", "pvp"}, Any, true},
		{"any with none present", []string{"arena", "lobby"}, Any, false},
		{"all mixed case", []string{"SPAWN", "PvP"}, All, true},
		{"single region all", []string{"spawn"}, All, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.IsIn(player, tt.required, tt.mode)
			if err != nil {
				t.Fatalf("IsIn failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("IsIn(%v, %s) = %v, expected %v", tt.required, tt.mode, got, tt.expected)
			}
		})
	}

	t.Run("case-insensitive", func(t *testing.T) {
		for _, name := range []string{"Spawn", "spawn", "SPAWN"} {
			got, err := eval.IsInAny(player, name)
			if err != nil {
				t.Fatalf("IsInAny failed: %v", err)
			}
			if !got {
				t.Errorf("Expected %q to match", name)
			}
		}
	})

	t.Run("directory ids compared in lower case", func(t *testing.T) {
		upper, p := newTestEvaluator(t, Region{ID: "Spawn"})
		got, err := upper.IsInAll(p, "spawn")
		if err != nil {
			t.Fatalf("IsInAll failed: %v", err)
		}
		if !got {
			t.Error("Expected directory id Spawn to match spawn")
		}
	})

	t.Run("empty requirement", func(t *testing.T) {
		for _, mode := range []Mode{All, Any} {
			_, err := eval.IsIn(player, nil, mode)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument for mode %s, got %v", mode, err)
			}
		}
		if _, err := eval.IsInAny(player); !errors.Is(err, ErrNoRegions) {
			t.Errorf("Expected ErrNoRegions, got %v", err)
		}
	})

	t.Run("offline actor", func(t *testing.T) {
		offline := uuid.New()
		all, err := eval.IsInAll(offline, "spawn")
		if err != nil || all {
			t.Errorf("Expected false/nil for offline ALL, got %v/%v", all, err)
		}
		anyIn, err := eval.IsInAny(offline, "spawn", "pvp")
		if err != nil || anyIn {
			t.Errorf("Expected false/nil for offline ANY, got %v/%v", anyIn, err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first, _ := eval.IsInAny(player, "pvp")
		for i := 0; i < 5; i++ {
			again, err := eval.IsInAny(player, "pvp")
			if err != nil || again != first {
				t.Fatalf("Result changed on call %d: %v (err=%v)", i, again, err)
			}
		}
	})
}

func TestEvaluator_BeforeInit(t *testing.T) {
	handle := NewDirectoryHandle()
	player := uuid.New()
	eval := NewEvaluator(handle, &fakeActorDirectory{positions: map[ActorRef]Coordinate{player: spawnPoint}})

	if _, err := eval.RegionsAt(spawnPoint); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Errorf("Expected ErrDirectoryUnavailable from RegionsAt, got %v", err)
	}
	if _, err := eval.RegionNamesOf(player); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Errorf("Expected ErrDirectoryUnavailable from RegionNamesOf, got %v", err)
	}
	if _, err := eval.IsInAny(player, "spawn"); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Errorf("Expected ErrDirectoryUnavailable from IsInAny, got %v", err)
	}
	if _, err := eval.RegionsOf(uuid.New()); !errors.Is(err, ErrDirectoryUnavailable) {
		t.Errorf("Expected ErrDirectoryUnavailable for offline actor, got %v", err)
	}

	dir := &fakeRegionDirectory{ApplicableRegionsFunc: func(Coordinate) []Region {
		return []Region{{ID: "spawn"}}
	}}
	if err := handle.Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	ok, err := eval.IsInAny(player, "spawn")
	if err != nil {
		t.Fatalf("Expected query to succeed after init, got %v", err)
	}
	if !ok {
		t.Error("Expected player to be in spawn after init")
	}
}

func TestDirectoryHandle(t *testing.T) {
	t.Run("nil directory rejected", func(t *testing.T) {
		handle := NewDirectoryHandle()
		if err := handle.Init(nil); err == nil {
			t.Error("Expected error for nil directory")
		}
		if handle.Ready() {
			t.Error("Handle should not be ready")
		}
	})

	t.Run("second init rejected", func(t *testing.T) {
		handle := NewDirectoryHandle()
		first := &fakeRegionDirectory{}
		if err := handle.Init(first); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if err := handle.Init(&fakeRegionDirectory{}); !errors.Is(err, ErrAlreadyInitialized) {
			t.Errorf("Expected ErrAlreadyInitialized, got %v", err)
		}
		got, err := handle.Get()
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != RegionDirectory(first) {
			t.Error("Expected first directory to be kept")
		}
	})

	t.Run("concurrent init has one winner", func(t *testing.T) {
		handle := NewDirectoryHandle()
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = handle.Get()
				if handle.Init(&fakeRegionDirectory{}) == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if wins != 1 {
			t.Errorf("Expected exactly one successful init, got %d", wins)
		}
	})
}

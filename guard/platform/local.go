package platform

import (
	"github.com/raidstone/wgevents/guard/actor"
	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/region"
)

// LocalVersion is the version reported by LocalBackend
const LocalVersion = "7.0.9-local"

// LocalBackend serves regions from a config.Manager and sessions from an
// actor.Manager running in the same process.
type LocalBackend struct {
	regions *config.Manager
	actors  *actor.Manager
	version string
}

// NewLocalBackend creates a backend over the given managers
func NewLocalBackend(regions *config.Manager, actors *actor.Manager) *LocalBackend {
	return &LocalBackend{
		regions: regions,
		actors:  actors,
		version: LocalVersion,
	}
}

// Version returns the backend version
func (b *LocalBackend) Version() string {
	return b.version
}

// Sessions returns the actor manager
func (b *LocalBackend) Sessions() SessionRegistry {
	if b.actors == nil {
		return nil
	}
	return b.actors
}

// Regions returns the file-backed region directory
func (b *LocalBackend) Regions() region.RegionDirectory {
	if b.regions == nil {
		return nil
	}
	return b.regions
}

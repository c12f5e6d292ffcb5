package platform

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/raidstone/wgevents/guard/actor"
	"github.com/raidstone/wgevents/guard/region"
)

var (
	ErrBackendMissing     = errors.New("region backend wasn't found")
	ErrRegistrationFailed = errors.New("could not register the entry handler")
	ErrAlreadyEnabled     = errors.New("plugin already enabled")
)

// SupportedMajor is the backend version prefix the plugin is built against
const SupportedMajor = "7."

// SessionRegistry accepts session handlers
type SessionRegistry interface {
	RegisterHandler(h actor.SessionHandler) bool
	UnregisterHandler(h actor.SessionHandler) bool
}

// Backend is the region-protection host the plugin attaches to
type Backend interface {
	Version() string
	Sessions() SessionRegistry
	Regions() region.RegionDirectory
}

// Plugin wires the entry handler and the directory handle to a backend.
type Plugin struct {
	handle  *region.DirectoryHandle
	handler actor.SessionHandler
	logger  *log.Logger
	enabled bool
	mu      sync.Mutex
}

// NewPlugin creates a disabled plugin. A nil logger logs to the standard logger.
func NewPlugin(handle *region.DirectoryHandle, handler actor.SessionHandler, logger *log.Logger) *Plugin {
	if logger == nil {
		logger = log.Default()
	}
	return &Plugin{
		handle:  handle,
		handler: handler,
		logger:  logger,
	}
}

// Enable attaches the plugin to backend. On failure the plugin stays
// disabled and the directory handle is left uninitialized.
func (p *Plugin) Enable(backend Backend) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled {
		return ErrAlreadyEnabled
	}

	if backend == nil {
		p.logger.Printf("ERROR: %s. Disabling...", ErrBackendMissing)
		return ErrBackendMissing
	}

	version := backend.Version()
	if !strings.HasPrefix(version, SupportedMajor) {
		p.logger.Printf("Warning: Detected region backend version %q.", version)
		p.logger.Printf("Warning: This plugin is meant to work with backend version \"7.0.0\" or higher,")
		p.logger.Printf("Warning: and may not work properly with any other major revision.")
		p.logger.Printf("Warning: Please update the backend if your version is below \"7.0.0\"")
	}

	regions := backend.Regions()
	if regions == nil {
		p.logger.Printf("ERROR: %s. Disabling...", ErrBackendMissing)
		return fmt.Errorf("%w: no region container", ErrBackendMissing)
	}

	sessions := backend.Sessions()
	if sessions == nil || !sessions.RegisterHandler(p.handler) {
		p.logger.Printf("ERROR: Could not register the entry handler!")
		p.logger.Printf("ERROR: Please report this error. The plugin will now be disabled.")
		return ErrRegistrationFailed
	}

	if err := p.handle.Init(regions); err != nil {
		sessions.UnregisterHandler(p.handler)
		p.logger.Printf("ERROR: Could not initialize the region directory: %v. Disabling...", err)
		return fmt.Errorf("failed to initialize region directory: %w", err)
	}

	p.enabled = true
	p.logger.Printf("Region events enabled (backend %s)", version)
	return nil
}

// Enabled reports whether Enable completed successfully
func (p *Plugin) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

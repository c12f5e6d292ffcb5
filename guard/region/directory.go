package region

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrDirectoryUnavailable = errors.New("region directory unavailable")
	ErrAlreadyInitialized   = errors.New("region directory already initialized")
	ErrInvalidArgument      = errors.New("invalid argument")

	// ErrNoRegions is returned by membership checks given an empty requirement
	ErrNoRegions = fmt.Errorf("%w: must supply at least one region to check", ErrInvalidArgument)
)

// RegionDirectory computes which regions apply at a coordinate
type RegionDirectory interface {
	ApplicableRegions(at Coordinate) []Region
}

// ActorDirectory resolves an actor to its current coordinate. The boolean is
// false when the actor is unknown or not online.
type ActorDirectory interface {
	Resolve(actor ActorRef) (Coordinate, bool)
}

type directoryRef struct {
	RegionDirectory
}

// DirectoryHandle holds the region directory once the platform has finished
// starting up. It is set exactly once; readers racing the write see it as
// unavailable.
type DirectoryHandle struct {
	ref atomic.Pointer[directoryRef]
}

// NewDirectoryHandle creates an empty handle
func NewDirectoryHandle() *DirectoryHandle {
	return &DirectoryHandle{}
}

// Init stores the directory. It fails if dir is nil or the handle was
// already initialized.
func (h *DirectoryHandle) Init(dir RegionDirectory) error {
	if dir == nil {
		return errors.New("region directory cannot be nil")
	}
	if !h.ref.CompareAndSwap(nil, &directoryRef{dir}) {
		return ErrAlreadyInitialized
	}
	return nil
}

// Get returns the directory or ErrDirectoryUnavailable
func (h *DirectoryHandle) Get() (RegionDirectory, error) {
	ref := h.ref.Load()
	if ref == nil {
		return nil, ErrDirectoryUnavailable
	}
	return ref.RegionDirectory, nil
}

// Ready reports whether Init has completed
func (h *DirectoryHandle) Ready() bool {
	return h.ref.Load() != nil
}

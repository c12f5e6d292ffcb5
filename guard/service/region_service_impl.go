package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raidstone/wgevents/guard/actor"
	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/metrics"
	"github.com/raidstone/wgevents/guard/region"
)

// regionServiceImpl implements the RegionService interface
type regionServiceImpl struct {
	evaluator Evaluator
	actors    ActorManager
	worlds    WorldManager
	metrics   *metrics.Metrics
}

// NewRegionService creates a new region service instance. m may be nil.
func NewRegionService(evaluator Evaluator, actors ActorManager, worlds WorldManager, m *metrics.Metrics) RegionService {
	return &regionServiceImpl{
		evaluator: evaluator,
		actors:    actors,
		worlds:    worlds,
		metrics:   m,
	}
}

// RegionsAt returns the regions applicable at a coordinate
func (s *regionServiceImpl) RegionsAt(ctx context.Context, at region.Coordinate) (*RegionsResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQueryLatency(time.Since(start)) }()
	s.metrics.IncrementQuery("at")

	set, err := s.evaluator.RegionsAt(at)
	if err != nil {
		return nil, s.queryError(err)
	}

	return &RegionsResult{
		Coordinate: &at,
		Regions:    set.Regions(),
		Names:      set.IDs(),
	}, nil
}

// ActorRegions returns the regions an actor currently stands in
func (s *regionServiceImpl) ActorRegions(ctx context.Context, id region.ActorRef) (*RegionsResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQueryLatency(time.Since(start)) }()
	s.metrics.IncrementQuery("of")

	set, err := s.evaluator.RegionsOf(id)
	if err != nil {
		return nil, s.queryError(err)
	}

	_, getErr := s.actors.Get(id)
	return &RegionsResult{
		Actor:   &id,
		Online:  getErr == nil,
		Regions: set.Regions(),
		Names:   set.IDs(),
	}, nil
}

// CheckMembership checks an actor's regions against the required names
func (s *regionServiceImpl) CheckMembership(ctx context.Context, id region.ActorRef, regions []string, mode string) (*MembershipResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQueryLatency(time.Since(start)) }()
	s.metrics.IncrementQuery("check")

	m := region.All
	if mode != "" {
		parsed, err := region.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		m = parsed
	}

	if len(regions) == 0 {
		return nil, region.ErrNoRegions
	}

	// One lookup feeds both the verdict and the reported regions
	set, err := s.evaluator.RegionsOf(id)
	if err != nil {
		return nil, s.queryError(err)
	}
	current := set.IDs()

	member, err := region.Satisfies(current, regions, m)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementMembershipCheck(m.String(), member)

	return &MembershipResult{
		Actor:    id,
		Mode:     m.String(),
		Required: regions,
		Member:   member,
		Current:  current,
	}, nil
}

// JoinActor brings an actor online
func (s *regionServiceImpl) JoinActor(ctx context.Context, id region.ActorRef, name string, at region.Coordinate) (*ActorInfo, error) {
	a, err := s.actors.Join(id, name, at)
	if err != nil {
		return nil, fmt.Errorf("failed to join actor: %w", err)
	}
	s.metrics.SetOnlineActors(s.actors.Count())
	return s.actorInfo(a), nil
}

// MoveActor moves an online actor. A move vetoed by a session handler is
// reported as unsuccessful rather than as an error.
func (s *regionServiceImpl) MoveActor(ctx context.Context, id region.ActorRef, to region.Coordinate) (*MoveResult, error) {
	a, err := s.actors.Move(id, to)
	if errors.Is(err, actor.ErrMoveCancelled) {
		return &MoveResult{
			Success: false,
			Actor:   s.actorInfo(a),
			Message: fmt.Sprintf("Move to %s was denied", to),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &MoveResult{
		Success: true,
		Actor:   s.actorInfo(a),
		Message: fmt.Sprintf("Moved to %s", to),
	}, nil
}

// LeaveActor takes an actor offline
func (s *regionServiceImpl) LeaveActor(ctx context.Context, id region.ActorRef) error {
	if err := s.actors.Leave(id); err != nil {
		return err
	}
	s.metrics.SetOnlineActors(s.actors.Count())
	return nil
}

// GetActor retrieves an online actor
func (s *regionServiceImpl) GetActor(ctx context.Context, id region.ActorRef) (*ActorInfo, error) {
	a, err := s.actors.Get(id)
	if err != nil {
		return nil, err
	}
	return s.actorInfo(a), nil
}

// ListActors returns all online actors
func (s *regionServiceImpl) ListActors(ctx context.Context) ([]*ActorInfo, error) {
	actors := s.actors.List()
	result := make([]*ActorInfo, 0, len(actors))
	for _, a := range actors {
		result = append(result, s.actorInfo(a))
	}
	return result, nil
}

// ListWorlds returns all loaded world definitions
func (s *regionServiceImpl) ListWorlds(ctx context.Context) ([]*config.WorldInfo, error) {
	return s.worlds.ListWorlds()
}

// GetWorld returns a world definition by name
func (s *regionServiceImpl) GetWorld(ctx context.Context, name string) (*config.WorldDef, error) {
	return s.worlds.LoadWorld(name)
}

// SaveWorld validates and stores a world definition
func (s *regionServiceImpl) SaveWorld(ctx context.Context, def *config.WorldDef) error {
	if def == nil {
		return fmt.Errorf("%w: world definition is required", config.ErrInvalidWorld)
	}
	return s.worlds.SaveWorld(def)
}

// actorInfo snapshots an actor with the regions at its position. Regions are
// left empty when the directory is not ready.
func (s *regionServiceImpl) actorInfo(a actor.Actor) *ActorInfo {
	info := &ActorInfo{
		ID:         a.ID,
		Name:       a.Name,
		Position:   a.Position,
		Regions:    []region.RegionID{},
		JoinedAt:   a.JoinedAt,
		LastSeenAt: a.LastSeenAt,
	}
	if set, err := s.evaluator.RegionsAt(a.Position); err == nil {
		info.Regions = set.IDs()
	}
	return info
}

func (s *regionServiceImpl) queryError(err error) error {
	if errors.Is(err, region.ErrDirectoryUnavailable) {
		s.metrics.IncrementDirectoryUnavailable()
	}
	return err
}

package service

import (
	"context"

	"github.com/raidstone/wgevents/guard/actor"
	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/region"
)

// RegionService defines all region and actor operations exposed to transports
type RegionService interface {
	// Region queries
	RegionsAt(ctx context.Context, at region.Coordinate) (*RegionsResult, error)
	ActorRegions(ctx context.Context, id region.ActorRef) (*RegionsResult, error)
	CheckMembership(ctx context.Context, id region.ActorRef, regions []string, mode string) (*MembershipResult, error)

	// Actor presence
	JoinActor(ctx context.Context, id region.ActorRef, name string, at region.Coordinate) (*ActorInfo, error)
	MoveActor(ctx context.Context, id region.ActorRef, to region.Coordinate) (*MoveResult, error)
	LeaveActor(ctx context.Context, id region.ActorRef) error
	GetActor(ctx context.Context, id region.ActorRef) (*ActorInfo, error)
	ListActors(ctx context.Context) ([]*ActorInfo, error)

	// World definitions
	ListWorlds(ctx context.Context) ([]*config.WorldInfo, error)
	GetWorld(ctx context.Context, name string) (*config.WorldDef, error)
	SaveWorld(ctx context.Context, def *config.WorldDef) error
}

// Evaluator answers region membership questions
type Evaluator interface {
	RegionsAt(at region.Coordinate) (region.RegionSet, error)
	RegionsOf(actor region.ActorRef) (region.RegionSet, error)
}

// ActorManager defines actor presence operations
type ActorManager interface {
	Join(id region.ActorRef, name string, at region.Coordinate) (actor.Actor, error)
	Move(id region.ActorRef, to region.Coordinate) (actor.Actor, error)
	Leave(id region.ActorRef) error
	Get(id region.ActorRef) (actor.Actor, error)
	List() []actor.Actor
	Count() int
}

// WorldManager handles world definition loading and saving
type WorldManager interface {
	ListWorlds() ([]*config.WorldInfo, error)
	LoadWorld(name string) (*config.WorldDef, error)
	SaveWorld(def *config.WorldDef) error
}

package region

// Evaluator answers region questions for coordinates and actors. It keeps no
// state of its own; every call reads the two directories afresh.
type Evaluator struct {
	regions *DirectoryHandle
	actors  ActorDirectory
}

// NewEvaluator creates an evaluator over the given directories
func NewEvaluator(regions *DirectoryHandle, actors ActorDirectory) *Evaluator {
	return &Evaluator{
		regions: regions,
		actors:  actors,
	}
}

// RegionsAt returns the regions applicable at a coordinate
func (e *Evaluator) RegionsAt(at Coordinate) (RegionSet, error) {
	dir, err := e.regions.Get()
	if err != nil {
		return RegionSet{}, err
	}
	return NewRegionSet(dir.ApplicableRegions(at)...), nil
}

// RegionNamesAt returns the ids of the regions applicable at a coordinate,
// spelled as the directory reports them
func (e *Evaluator) RegionNamesAt(at Coordinate) ([]RegionID, error) {
	set, err := e.RegionsAt(at)
	if err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// RegionsOf returns the regions an actor currently stands in. An actor that
// cannot be resolved is in no regions, but the directory must still be
// available.
func (e *Evaluator) RegionsOf(actor ActorRef) (RegionSet, error) {
	dir, err := e.regions.Get()
	if err != nil {
		return RegionSet{}, err
	}
	at, ok := e.actors.Resolve(actor)
	if !ok {
		return NewRegionSet(), nil
	}
	return NewRegionSet(dir.ApplicableRegions(at)...), nil
}

// RegionNamesOf returns the ids of the regions an actor currently stands in
func (e *Evaluator) RegionNamesOf(actor ActorRef) ([]RegionID, error) {
	set, err := e.RegionsOf(actor)
	if err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// IsIn checks the actor's current regions against required under mode
func (e *Evaluator) IsIn(actor ActorRef, required []string, mode Mode) (bool, error) {
	if len(required) == 0 {
		return false, ErrNoRegions
	}

	current, err := e.RegionNamesOf(actor)
	if err != nil {
		return false, err
	}
	return Satisfies(current, required, mode)
}

// IsInAll reports whether the actor is in every named region
func (e *Evaluator) IsInAll(actor ActorRef, names ...string) (bool, error) {
	return e.IsIn(actor, names, All)
}

// IsInAny reports whether the actor is in at least one named region
func (e *Evaluator) IsInAny(actor ActorRef, names ...string) (bool, error) {
	return e.IsIn(actor, names, Any)
}

package world

// ActorState is the render-facing view of one actor.
type ActorState struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
}

// Snapshot is a copy of every actor position after a tick.
type Snapshot struct {
	Tick      uint64       `json:"tick"`
	Goldfish  ActorState   `json:"goldfish"`
	Sharks    []ActorState `json:"sharks"`
	SmallFish []ActorState `json:"small_fish"`
}

func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Tick:      w.tick,
		Goldfish:  stateOf(w.goldfish),
		Sharks:    statesOf(w.sharks),
		SmallFish: statesOf(w.smallFish),
	}
}

func stateOf(a *Actor) ActorState {
	return ActorState{ID: a.ID, Position: a.Position}
}

func statesOf(actors []*Actor) []ActorState {
	out := make([]ActorState, len(actors))
	for i, a := range actors {
		out[i] = stateOf(a)
	}
	return out
}

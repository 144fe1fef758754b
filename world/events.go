package world

import "github.com/mlange-42/ark/ecs"

// SubmergedEvent fires the tick a body's submerged fraction first crosses
// its configured threshold.
type SubmergedEvent struct {
	Entity   ecs.Entity
	Fraction float32
}

// SurfacedEvent fires the tick a previously-submerged body's fraction
// drops back below threshold.
type SurfacedEvent struct {
	Entity ecs.Entity
}

// eventQueue buffers one tick's worth of Submerged/Surfaced events between
// the post-simulation phase that detects them and the host's drain call.
// It mirrors spec.md §6's "event-like outputs" description: these aren't
// ark ECS events (the teacher has no such resource), just a plain queue a
// host polls once per tick, matching the "spawn -> poll-each-frame"
// pattern spec.md §9 prescribes for every asynchronous or deferred output.
type eventQueue struct {
	submerged []SubmergedEvent
	surfaced  []SurfacedEvent
}

// DrainSubmerged returns and clears this tick's Submerged events.
func (w *World) DrainSubmerged() []SubmergedEvent {
	out := w.events.submerged
	w.events.submerged = nil
	return out
}

// DrainSurfaced returns and clears this tick's Surfaced events.
func (w *World) DrainSurfaced() []SurfacedEvent {
	out := w.events.surfaced
	w.events.surfaced = nil
	return out
}

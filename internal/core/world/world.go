package world

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// DriftMode selects how autonomous actors move between ticks.
type DriftMode uint8

const (
	// DriftAccumulate adds the oscillation term to the current position every
	// tick, so positions are a running sum over all ticks so far.
	DriftAccumulate DriftMode = iota
	// DriftOscillate places the actor at origin plus the oscillation term,
	// keeping it bounded around its spawn point.
	DriftOscillate
)

func (d DriftMode) String() string {
	switch d {
	case DriftAccumulate:
		return "accumulate"
	case DriftOscillate:
		return "oscillate"
	default:
		return fmt.Sprintf("drift(%d)", uint8(d))
	}
}

func ParseDriftMode(s string) (DriftMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accumulate":
		return DriftAccumulate, nil
	case "oscillate":
		return DriftOscillate, nil
	default:
		return DriftAccumulate, fmt.Errorf("%w: %q", ErrUnknownDriftMode, s)
	}
}

func (d *DriftMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDriftMode(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DriftMode) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	DefaultSharks             = 3
	DefaultSmallFish          = 20
	DefaultPointerScaleX      = 15.0
	DefaultPointerScaleY      = 10.0
	DefaultProximityThreshold = 2.0
)

// Spawn volume for randomly placed actors: x in [-20,20), y in [-10,10), z in [-5,5).
var (
	SpawnMin  = Position{-20, -10, -5}
	SpawnSize = Position{40, 20, 10}
)

// Options configures a World. Use DefaultOptions and override fields.
type Options struct {
	Sharks    int
	SmallFish int

	// Explicit spawn positions. When set they replace the random placement
	// and the matching count above.
	SharkPositions     []Position
	SmallFishPositions []Position
	GoldfishPosition   Position

	// Rand drives random placement. A nil Rand uses a source seeded with Seed.
	Rand *rand.Rand
	Seed int64

	Drift              DriftMode
	SharkMotion        Motion
	SmallFishMotion    Motion
	PointerScaleX      float64
	PointerScaleY      float64
	ProximityThreshold float64

	OnProximity ProximityHandler
}

func DefaultOptions() Options {
	return Options{
		Sharks:             DefaultSharks,
		SmallFish:          DefaultSmallFish,
		Drift:              DriftAccumulate,
		SharkMotion:        SharkMotion,
		SmallFishMotion:    SmallFishMotion,
		PointerScaleX:      DefaultPointerScaleX,
		PointerScaleY:      DefaultPointerScaleY,
		ProximityThreshold: DefaultProximityThreshold,
	}
}

// World owns the goldfish, the shark and small-fish collections and the
// latest pointer sample for one session. A World is not safe for concurrent
// use; callers serialize access (see loop.Loop).
type World struct {
	goldfish  *Actor
	sharks    []*Actor
	smallFish []*Actor

	pointer    PointerSample
	hasPointer bool

	tick uint64

	drift           DriftMode
	sharkMotion     Motion
	smallFishMotion Motion
	scaleX, scaleY  float64
	threshold       float64

	onProximity ProximityHandler
}

// New populates a world. Membership is fixed from here on.
func New(opts Options) *World {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	w := &World{
		goldfish: &Actor{
			ID:       uuid.NewString(),
			Kind:     KindGoldfish,
			Position: opts.GoldfishPosition,
			Origin:   opts.GoldfishPosition,
		},
		drift:           opts.Drift,
		sharkMotion:     opts.SharkMotion,
		smallFishMotion: opts.SmallFishMotion,
		scaleX:          opts.PointerScaleX,
		scaleY:          opts.PointerScaleY,
		threshold:       opts.ProximityThreshold,
		onProximity:     opts.OnProximity,
	}

	w.sharks = spawn(KindShark, opts.SharkPositions, opts.Sharks, rng)
	w.smallFish = spawn(KindSmallFish, opts.SmallFishPositions, opts.SmallFish, rng)

	return w
}

func spawn(kind Kind, explicit []Position, count int, rng *rand.Rand) []*Actor {
	if explicit != nil {
		count = len(explicit)
	}
	actors := make([]*Actor, 0, count)
	for i := 0; i < count; i++ {
		var pos Position
		if explicit != nil {
			pos = explicit[i]
		} else {
			pos = Position{
				rng.Float64()*SpawnSize.X() + SpawnMin.X(),
				rng.Float64()*SpawnSize.Y() + SpawnMin.Y(),
				rng.Float64()*SpawnSize.Z() + SpawnMin.Z(),
			}
		}
		actors = append(actors, &Actor{
			ID:       uuid.NewString(),
			Kind:     kind,
			Position: pos,
			Origin:   pos,
		})
	}
	return actors
}

// SetPointer stores the latest pointer sample, replacing any previous one.
// Invalid samples are dropped and SetPointer reports false.
func (w *World) SetPointer(sample PointerSample) bool {
	clean, ok := sample.Sanitize()
	if !ok {
		return false
	}
	w.pointer = clean
	w.hasPointer = true
	return true
}

// Pointer returns the latest stored sample, if any.
func (w *World) Pointer() (PointerSample, bool) {
	return w.pointer, w.hasPointer
}

// Advance moves every actor for timestamp now (milliseconds) and returns the
// proximity events raised during this tick. Each event is also passed to the
// configured handler. A non-finite now is ignored.
//
// Advance is not idempotent: in DriftAccumulate mode every call adds another
// delta, so a scheduler must not call it twice for the same tick.
func (w *World) Advance(now float64) []ProximityEvent {
	if !isFinite(now) {
		return nil
	}
	w.tick++

	if w.hasPointer {
		w.goldfish.Position[0] = w.pointer.X * w.scaleX
		w.goldfish.Position[1] = w.pointer.Y * w.scaleY
	}

	w.move(w.sharks, w.sharkMotion, now)
	w.move(w.smallFish, w.smallFishMotion, now)

	var events []ProximityEvent
	for _, shark := range w.sharks {
		distance := shark.DistanceTo(w.goldfish)
		if distance >= w.threshold {
			continue
		}
		event := ProximityEvent{
			SharkID:  shark.ID,
			Distance: distance,
			Tick:     w.tick,
			At:       now,
		}
		events = append(events, event)
		if w.onProximity != nil {
			w.onProximity(event)
		}
	}

	return events
}

func (w *World) move(actors []*Actor, motion Motion, now float64) {
	offset := motion.Offset(now)
	for _, actor := range actors {
		switch w.drift {
		case DriftOscillate:
			actor.Position = actor.Origin.Add(offset)
		default:
			actor.Position = actor.Position.Add(offset)
		}
	}
}

// SetProximityHandler replaces the handler invoked for each proximity event.
func (w *World) SetProximityHandler(h ProximityHandler) {
	w.onProximity = h
}

func (w *World) Tick() uint64 { return w.tick }

func (w *World) Goldfish() Actor { return *w.goldfish }

func (w *World) Sharks() []Actor { return copyActors(w.sharks) }

func (w *World) SmallFish() []Actor { return copyActors(w.smallFish) }

func copyActors(actors []*Actor) []Actor {
	out := make([]Actor, len(actors))
	for i, a := range actors {
		out[i] = *a
	}
	return out
}

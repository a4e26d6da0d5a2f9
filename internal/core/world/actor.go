package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is a point in scene units.
type Position = mgl64.Vec3

// Kind identifies which category an actor belongs to.
type Kind uint8

const (
	KindGoldfish Kind = iota
	KindShark
	KindSmallFish
)

func (k Kind) String() string {
	switch k {
	case KindGoldfish:
		return "goldfish"
	case KindShark:
		return "shark"
	case KindSmallFish:
		return "small_fish"
	default:
		return "unknown"
	}
}

// Actor is any positioned entity in the scene.
type Actor struct {
	ID       string
	Kind     Kind
	Position Position
	// Origin is the spawn position. Only DriftOscillate reads it.
	Origin Position
}

// DistanceTo returns the Euclidean distance between two actors.
func (a *Actor) DistanceTo(other *Actor) float64 {
	return a.Position.Sub(other.Position).Len()
}

// Motion is the per-category oscillation constants applied each tick.
type Motion struct {
	Frequency  float64
	AmplitudeX float64
	AmplitudeY float64
}

var (
	SharkMotion     = Motion{Frequency: 0.001, AmplitudeX: 0.1, AmplitudeY: 0.05}
	SmallFishMotion = Motion{Frequency: 0.002, AmplitudeX: 0.05, AmplitudeY: 0.03}
)

// Offset returns the (x, y, 0) term for timestamp now.
func (m Motion) Offset(now float64) Position {
	phase := now * m.Frequency
	return Position{math.Sin(phase) * m.AmplitudeX, math.Cos(phase) * m.AmplitudeY, 0}
}

// PointerSample is the latest normalized pointer coordinate, each axis in [-1, 1].
type PointerSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sanitize clamps the sample into [-1, 1] on both axes. Samples carrying NaN
// or an infinity are rejected.
func (p PointerSample) Sanitize() (PointerSample, bool) {
	if !isFinite(p.X) || !isFinite(p.Y) {
		return PointerSample{}, false
	}
	return PointerSample{X: clamp(p.X, -1, 1), Y: clamp(p.Y, -1, 1)}, true
}

// ProximityEvent is raised when a shark comes within the proximity threshold
// of the goldfish.
type ProximityEvent struct {
	SharkID  string  `json:"shark_id"`
	Distance float64 `json:"distance"`
	Tick     uint64  `json:"tick"`
	At       float64 `json:"at"`
}

// ProximityHandler consumes proximity events synchronously, inside Advance.
// Handlers must not call back into the World that invoked them.
type ProximityHandler func(ProximityEvent)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

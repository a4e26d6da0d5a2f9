package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func newTestWorld(sharks, fish []Position) *World {
	opts := DefaultOptions()
	opts.SharkPositions = sharks
	opts.SmallFishPositions = fish
	return New(opts)
}

func TestGoldfishStaysPutWithoutPointer(t *testing.T) {
	opts := DefaultOptions()
	opts.GoldfishPosition = Position{1, 2, 3}
	opts.Seed = 42
	w := New(opts)

	for now := 1000.0; now < 2000; now += 16 {
		w.Advance(now)
	}

	assert.Equal(t, Position{1, 2, 3}, w.Goldfish().Position)
}

func TestPointerMapsOntoGoldfish(t *testing.T) {
	samples := []PointerSample{
		{X: 0, Y: 0},
		{X: 1, Y: -1},
		{X: -0.5, Y: 0.25},
		{X: 2.0 / 3.0, Y: 0},
	}

	for _, s := range samples {
		opts := DefaultOptions()
		opts.GoldfishPosition = Position{0, 0, -4}
		w := New(opts)

		require.True(t, w.SetPointer(s))
		w.Advance(500)

		got := w.Goldfish().Position
		assert.InDelta(t, s.X*15, got.X(), eps)
		assert.InDelta(t, s.Y*10, got.Y(), eps)
		assert.Equal(t, -4.0, got.Z(), "z must not be touched")
	}
}

func TestPointerLastWriteWins(t *testing.T) {
	w := newTestWorld(nil, nil)

	w.SetPointer(PointerSample{X: 0.1, Y: 0.1})
	w.SetPointer(PointerSample{X: -0.2, Y: 0.4})
	w.Advance(1)

	got := w.Goldfish().Position
	assert.InDelta(t, -3.0, got.X(), eps)
	assert.InDelta(t, 4.0, got.Y(), eps)
}

func TestPointerSanitize(t *testing.T) {
	w := newTestWorld(nil, nil)

	assert.False(t, w.SetPointer(PointerSample{X: math.NaN(), Y: 0}))
	assert.False(t, w.SetPointer(PointerSample{X: 0, Y: math.Inf(1)}))
	_, ok := w.Pointer()
	assert.False(t, ok, "rejected samples must not be stored")

	require.True(t, w.SetPointer(PointerSample{X: 3, Y: -7}))
	p, ok := w.Pointer()
	require.True(t, ok)
	assert.Equal(t, PointerSample{X: 1, Y: -1}, p)
}

func TestSharkDriftAccumulates(t *testing.T) {
	start := Position{3, -2, 1}
	w := newTestWorld([]Position{start}, nil)

	times := []float64{16, 33, 50, 1000, 1017, 5000, 5016.5}
	want := start
	for _, now := range times {
		w.Advance(now)
		want = want.Add(Position{math.Sin(now*0.001) * 0.1, math.Cos(now*0.001) * 0.05, 0})
	}

	got := w.Sharks()[0].Position
	assert.InDelta(t, want.X(), got.X(), eps)
	assert.InDelta(t, want.Y(), got.Y(), eps)
	assert.Equal(t, start.Z(), got.Z())
}

func TestSmallFishDriftAccumulates(t *testing.T) {
	start := Position{-7, 4, 0.5}
	w := newTestWorld(nil, []Position{start})

	want := start
	for now := 100.0; now <= 1000; now += 100 {
		w.Advance(now)
		want = want.Add(Position{math.Sin(now*0.002) * 0.05, math.Cos(now*0.002) * 0.03, 0})
	}

	got := w.SmallFish()[0].Position
	assert.InDelta(t, want.X(), got.X(), eps)
	assert.InDelta(t, want.Y(), got.Y(), eps)
	assert.Equal(t, start.Z(), got.Z())
}

func TestOscillateDriftStaysAroundOrigin(t *testing.T) {
	opts := DefaultOptions()
	opts.Drift = DriftOscillate
	opts.SharkPositions = []Position{{5, 5, 0}}
	w := New(opts)

	for now := 0.0; now < 100_000; now += 250 {
		w.Advance(now)
	}

	last := 99_750.0
	got := w.Sharks()[0].Position
	assert.InDelta(t, 5+math.Sin(last*0.001)*0.1, got.X(), eps)
	assert.InDelta(t, 5+math.Cos(last*0.001)*0.05, got.Y(), eps)
}

func TestSharkAttackScenario(t *testing.T) {
	var handled []ProximityEvent
	opts := DefaultOptions()
	opts.SharkPositions = []Position{{10, 0, 0}, {-15, 8, 0}}
	opts.SmallFish = 0
	opts.OnProximity = func(e ProximityEvent) { handled = append(handled, e) }
	w := New(opts)

	w.SetPointer(PointerSample{X: 2.0 / 3.0, Y: 0})
	events := w.Advance(16)

	require.Len(t, events, 1)
	assert.Equal(t, w.Sharks()[0].ID, events[0].SharkID)
	assert.Less(t, events[0].Distance, 2.0)
	assert.Equal(t, uint64(1), events[0].Tick)
	assert.Equal(t, 16.0, events[0].At)
	assert.Equal(t, events, handled)
}

func TestProximityIsStrict(t *testing.T) {
	// Freeze shark motion so the distance is exact.
	opts := DefaultOptions()
	opts.SharkMotion = Motion{}
	opts.SharkPositions = []Position{{2, 0, 0}, {0, 1.999, 0}}
	w := New(opts)

	events := w.Advance(1)

	require.Len(t, events, 1, "distance == threshold must not fire")
	assert.Equal(t, w.Sharks()[1].ID, events[0].SharkID)
	assert.InDelta(t, 1.999, events[0].Distance, eps)
}

func TestProximityMatchesDistanceEveryTick(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 7
	opts.Sharks = 12
	w := New(opts)

	for i := 0; i < 500; i++ {
		now := float64(i) * 16.6
		px := math.Sin(float64(i) / 40)
		py := math.Cos(float64(i) / 55)
		w.SetPointer(PointerSample{X: px, Y: py})

		events := w.Advance(now)

		fired := make(map[string]bool, len(events))
		for _, e := range events {
			fired[e.SharkID] = true
		}
		goldfish := w.Goldfish()
		for _, shark := range w.Sharks() {
			near := shark.DistanceTo(&goldfish) < 2.0
			assert.Equal(t, near, fired[shark.ID], "tick %d shark %s", i, shark.ID)
		}
	}
}

func TestDriftAloneCanReachIdleGoldfish(t *testing.T) {
	// sin(now*0.001) is -1 around now = 3π/2 * 1000, so each tick pulls the
	// shark about 0.1 units toward the goldfish at the origin.
	base := 1500 * math.Pi
	w := newTestWorld([]Position{{5, 0, 0}}, nil)

	firstHit := -1
	for i := 0; i < 60; i++ {
		events := w.Advance(base + float64(i)*0.001)
		if len(events) > 0 && firstHit < 0 {
			firstHit = i
		}
		if firstHit < 0 {
			goldfish := w.Goldfish()
			shark := w.Sharks()[0]
			assert.GreaterOrEqual(t, shark.DistanceTo(&goldfish), 2.0)
		}
	}

	require.GreaterOrEqual(t, firstHit, 0, "drift never crossed the threshold")
	assert.InDelta(t, 30, firstHit, 2)
	assert.Equal(t, Position{}, w.Goldfish().Position)
}

func TestNoEventsWhenSharksStayFar(t *testing.T) {
	w := newTestWorld([]Position{{18, 9, 4}, {-18, -9, -4}}, nil)

	for now := 0.0; now < 10_000; now += 16 {
		assert.Empty(t, w.Advance(now))
	}
}

func TestNonFiniteTimestampIgnored(t *testing.T) {
	w := newTestWorld([]Position{{1, 1, 1}}, nil)
	before := w.Snapshot()

	assert.Nil(t, w.Advance(math.NaN()))
	assert.Nil(t, w.Advance(math.Inf(1)))

	assert.Equal(t, before, w.Snapshot())
	assert.Equal(t, uint64(0), w.Tick())
}

func TestRandomPlacement(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 99
	a := New(opts)
	b := New(opts)

	require.Len(t, a.Sharks(), DefaultSharks)
	require.Len(t, a.SmallFish(), DefaultSmallFish)

	for i, shark := range a.Sharks() {
		assert.Equal(t, shark.Position, b.Sharks()[i].Position, "same seed, same layout")
		assertInSpawnVolume(t, shark.Position)
		assert.Equal(t, KindShark, shark.Kind)
	}
	for _, fish := range a.SmallFish() {
		assertInSpawnVolume(t, fish.Position)
		assert.Equal(t, KindSmallFish, fish.Kind)
	}

	ids := map[string]bool{a.Goldfish().ID: true}
	for _, actor := range append(a.Sharks(), a.SmallFish()...) {
		assert.False(t, ids[actor.ID], "duplicate id %s", actor.ID)
		ids[actor.ID] = true
	}
}

func TestMembershipFixedAcrossTicks(t *testing.T) {
	opts := DefaultOptions()
	w := New(opts)
	ids := func() []string {
		var out []string
		for _, a := range append(w.Sharks(), w.SmallFish()...) {
			out = append(out, a.ID)
		}
		return out
	}
	before := ids()
	for now := 0.0; now < 1000; now += 16 {
		w.Advance(now)
	}
	assert.Equal(t, before, ids())
}

func TestSnapshotIsACopy(t *testing.T) {
	w := newTestWorld([]Position{{1, 2, 3}}, nil)
	snap := w.Snapshot()
	snap.Sharks[0].Position[0] = 100

	assert.Equal(t, 1.0, w.Sharks()[0].Position.X())
}

func TestParseDriftMode(t *testing.T) {
	mode, err := ParseDriftMode("Oscillate")
	require.NoError(t, err)
	assert.Equal(t, DriftOscillate, mode)

	_, err = ParseDriftMode("teleport")
	assert.ErrorIs(t, err, ErrUnknownDriftMode)
}

func assertInSpawnVolume(t *testing.T, p Position) {
	t.Helper()
	for axis := 0; axis < 3; axis++ {
		assert.GreaterOrEqual(t, p[axis], SpawnMin[axis])
		assert.Less(t, p[axis], SpawnMin[axis]+SpawnSize[axis])
	}
}

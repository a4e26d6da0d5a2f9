package terrain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrip(t *testing.T) {
	p := DefaultParams()
	blocks := Generate(p)

	perColumn := map[float64]int{}
	for _, b := range blocks {
		perColumn[b.Position.X()]++
		assert.Equal(t, 0.0, b.Position.Z())
		assert.Equal(t, 2.0, b.Size)
		assert.Equal(t, uint32(0x225577), b.Color)
		assert.GreaterOrEqual(t, b.Position.Y(), -15.0)
	}

	require.Len(t, perColumn, 20, "one column every 2 units over [-20, 20)")

	total := 0
	for x := -20.0; x < 20; x += 2 {
		height := math.Floor(math.Sin(x/5)*3) + 4
		want := int(math.Ceil(height / 2))
		assert.Equal(t, want, perColumn[x], "column x=%v", x)
		total += want
	}
	assert.Len(t, blocks, total)
}

func TestColumnHeight(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 4.0, p.ColumnHeight(0))
	// sin(10/5)*3 = 2.72..., floor 2
	assert.Equal(t, 6.0, p.ColumnHeight(10))
	// sin(-10/5)*3 = -2.72..., floor -3
	assert.Equal(t, 1.0, p.ColumnHeight(-10))
}

func TestBlocksStayBelowColumnTop(t *testing.T) {
	p := DefaultParams()
	for _, b := range Generate(p) {
		assert.Less(t, b.Position.Y(), p.FloorY+p.ColumnHeight(b.Position.X()))
	}
}

func TestNonPositiveStep(t *testing.T) {
	p := DefaultParams()
	p.Step = 0
	assert.Empty(t, Generate(p))
}

// Package terrain generates the voxel strip along the sea floor.
package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Block struct {
	Position mgl64.Vec3 `json:"position"`
	Size     float64    `json:"size"`
	Color    uint32     `json:"color"`
}

// Params describes one strip. Columns run along x in [MinX, MaxX) every Step
// units; each column stacks blocks from FloorY upward while y < FloorY+height,
// where height = floor(sin(x/Wavelength)*Amplitude) + BaseHeight.
type Params struct {
	MinX, MaxX float64
	Step       float64
	FloorY     float64
	Z          float64
	Wavelength float64
	Amplitude  float64
	BaseHeight float64
	BlockSize  float64
	Color      uint32
}

func DefaultParams() Params {
	return Params{
		MinX:       -20,
		MaxX:       20,
		Step:       2,
		FloorY:     -15,
		Z:          0,
		Wavelength: 5,
		Amplitude:  3,
		BaseHeight: 4,
		BlockSize:  2,
		Color:      0x225577,
	}
}

// ColumnHeight is the stack height for the column at x.
func (p Params) ColumnHeight(x float64) float64 {
	return math.Floor(math.Sin(x/p.Wavelength)*p.Amplitude) + p.BaseHeight
}

// Generate lays out every block of the strip. A non-positive step yields no
// blocks.
func Generate(p Params) []Block {
	if p.Step <= 0 {
		return nil
	}

	var blocks []Block
	for x := p.MinX; x < p.MaxX; x += p.Step {
		top := p.FloorY + p.ColumnHeight(x)
		for y := p.FloorY; y < top; y += p.Step {
			blocks = append(blocks, Block{
				Position: mgl64.Vec3{x, y, p.Z},
				Size:     p.BlockSize,
				Color:    p.Color,
			})
		}
	}
	return blocks
}

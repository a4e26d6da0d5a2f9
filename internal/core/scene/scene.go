// Package scene describes the static parts of the underwater scene that the
// browser renders around the live actors.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Antinowhere/VOXEL-FISH/internal/core/terrain"
)

type Palette struct {
	Water     uint32 `json:"water"`
	Goldfish  uint32 `json:"goldfish"`
	Shark     uint32 `json:"shark"`
	SmallFish uint32 `json:"small_fish"`
	Sunray    uint32 `json:"sunray"`
}

type Camera struct {
	FOV      float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
	Position mgl64.Vec3 `json:"position"`
}

type Light struct {
	Color     uint32      `json:"color"`
	Intensity float64     `json:"intensity"`
	Position  *mgl64.Vec3 `json:"position,omitempty"`
}

type Lights struct {
	Ambient     Light `json:"ambient"`
	Directional Light `json:"directional"`
}

type Bloom struct {
	Strength  float64 `json:"strength"`
	Radius    float64 `json:"radius"`
	Threshold float64 `json:"threshold"`
}

// Shape is a cube of edge Size, stretched by Scale.
type Shape struct {
	Size  float64    `json:"size"`
	Scale mgl64.Vec3 `json:"scale"`
	Color uint32     `json:"color"`
}

type Shapes struct {
	Goldfish  Shape `json:"goldfish"`
	Shark     Shape `json:"shark"`
	SmallFish Shape `json:"small_fish"`
}

type Scene struct {
	Palette Palette         `json:"palette"`
	Camera  Camera          `json:"camera"`
	Lights  Lights          `json:"lights"`
	Bloom   Bloom           `json:"bloom"`
	Shapes  Shapes          `json:"shapes"`
	Terrain []terrain.Block `json:"terrain"`
}

var DefaultPalette = Palette{
	Water:     0x4499ff,
	Goldfish:  0xff6600,
	Shark:     0x666666,
	SmallFish: 0x55ff55,
	Sunray:    0xffffdd,
}

// Default is the reference underwater scene with the default terrain strip.
func Default() Scene {
	return Build(DefaultPalette, terrain.DefaultParams())
}

func Build(palette Palette, strip terrain.Params) Scene {
	sun := mgl64.Vec3{0, 10, 0}
	one := mgl64.Vec3{1, 1, 1}

	return Scene{
		Palette: palette,
		Camera: Camera{
			FOV:      75,
			Near:     0.1,
			Far:      1000,
			Position: mgl64.Vec3{0, 5, 15},
		},
		Lights: Lights{
			Ambient:     Light{Color: 0xffffff, Intensity: 0.6},
			Directional: Light{Color: 0xffffff, Intensity: 0.8, Position: &sun},
		},
		Bloom: Bloom{Strength: 1.5, Radius: 0.4, Threshold: 0.85},
		Shapes: Shapes{
			Goldfish:  Shape{Size: 1, Scale: mgl64.Vec3{0.5, 0.5, 1}, Color: palette.Goldfish},
			Shark:     Shape{Size: 2, Scale: one, Color: palette.Shark},
			SmallFish: Shape{Size: 0.3, Scale: one, Color: palette.SmallFish},
		},
		Terrain: terrain.Generate(strip),
	}
}

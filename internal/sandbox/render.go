package sandbox

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/plus3/bumperfield/internal/physics"
)

// Project maps world coordinates (origin at the centre, y up) to screen
// pixels.
func Project(p geom.Vec2, width, height int) (float32, float32) {
	return float32(float64(width)/2 + p.X), float32(float64(height)/2 - p.Y)
}

type drawable struct {
	shape *Shape
	color color.RGBA
	pos   geom.Vec2
	rot   float64
}

// flashColor fades c toward FlashColor by the flash's remaining share.
func flashColor(c color.RGBA, flash *Flash) color.RGBA {
	if flash == nil || flash.Remaining <= 0 {
		return c
	}
	t := min(flash.Remaining/FlashDuration, 1)
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{R: mix(c.R, FlashColor.R), G: mix(c.G, FlashColor.G), B: mix(c.B, FlashColor.B), A: c.A}
}

// RenderSystem draws every Shape and the HUD text into the Screen image.
type RenderSystem struct {
	Shapes ecs.Query[struct {
		Shape     *Shape
		Transform *physics.Transform
		Flash     *Flash `ecs:"optional"`
	}]
	Screen ecs.Singleton[Screen]
	Hud    ecs.Singleton[Hud]

	items []drawable
}

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	screen := s.Screen.Get().Image
	if screen == nil {
		return
	}
	screen.Fill(ClearColor)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	s.items = s.items[:0]
	for e := range s.Shapes.Values() {
		s.items = append(s.items, drawable{
			shape: e.Shape,
			color: flashColor(e.Shape.Color, e.Flash),
			pos:   e.Transform.Position,
			rot:   e.Transform.Rotation,
		})
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].shape.Layer < s.items[j].shape.Layer
	})

	for _, it := range s.items {
		x, y := Project(it.pos, w, h)
		r := float32(it.shape.Radius)
		if it.shape.Ring {
			vector.StrokeCircle(screen, x, y, r, 3, it.color, true)
			continue
		}
		vector.DrawFilledCircle(screen, x, y, r, it.color, true)
		if it.shape.Marker {
			tip := it.pos.Add(geom.V(math.Cos(it.rot), math.Sin(it.rot)).Scale(it.shape.Radius * 0.8))
			tx, ty := Project(tip, w, h)
			vector.StrokeLine(screen, x, y, tx, ty, 2, ClearColor, true)
		}
	}

	ebitenutil.DebugPrint(screen, s.Hud.Get().String())
}

func (h *Hud) String() string {
	return fmt.Sprintf("bumps: %d  time: %.1fs  bumpers: %d  seed: %d\narrows/WASD/stick move, R reseed, Q quit",
		h.Bumps, h.Elapsed, h.Bumpers, h.Seed)
}

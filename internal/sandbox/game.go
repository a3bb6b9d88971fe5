package sandbox

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Overlay is drawn over the world, e.g. a debug UI.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(width, height int)
}

// Game adapts a Sandbox to ebiten.Game.
type Game struct {
	Sandbox *Sandbox
	Overlay Overlay
}

func (g *Game) Update() error {
	if g.Overlay != nil {
		g.Overlay.BeginFrame()
	}
	g.Sandbox.Step(1 / float64(ebiten.TPS()))
	if g.Overlay != nil {
		g.Overlay.EndFrame()
	}

	if g.Sandbox.Quit() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.Sandbox.Draw(screen)
	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.Overlay != nil {
		g.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
